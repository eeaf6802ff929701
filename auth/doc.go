// Package auth implements the authentication core of ticketd: bcrypt
// password hashing, JWT issuance and validation, credential
// verification against the user store, and the per-request identity
// context used by downstream handlers.
//
// Sessions are stateless. Every token is self-contained and signed
// with a process-wide key loaded once at startup; validating a token
// never touches the database. Tokens are not invalidated before their
// natural expiry; there is no revocation list and no logout
// invalidation.
package auth
