package auth

import (
	"github.com/goliatone/go-errors"
)

// ErrMissingCredentials is returned when the login payload is missing
// a username or a password.
var ErrMissingCredentials = errors.New("Username or password not found", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode("MISSING_CREDENTIALS")

// ErrInvalidCredentials covers unknown usernames and wrong passwords
// alike; callers must not be able to tell which one it was.
var ErrInvalidCredentials = errors.New("invalid username or password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrAccountDisabled is returned for disabled accounts.
var ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("ACCOUNT_DISABLED")

// ErrAccountLocked is returned for locked accounts.
var ErrAccountLocked = errors.New("account is locked", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("ACCOUNT_LOCKED")

// ErrTokenExpired is returned when a token's expiry has passed.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrTokenInvalid is returned when the signature does not verify.
var ErrTokenInvalid = errors.New("token signature is invalid", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_INVALID")

// ErrTokenMalformed is returned when the token cannot be decoded.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrNoIdentity is returned by the access guard when a protected
// request carries no resolved identity.
var ErrNoIdentity = errors.New("authentication required", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("NO_IDENTITY")

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode("EMPTY_PASSWORD")

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("hash and password mismatch", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("PASSWORD_MISMATCH")
