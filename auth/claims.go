package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TicketClaims is the claim set embedded in every issued token. The
// subject is the username; the email is denormalized so downstream
// consumers do not need a store lookup to display it.
type TicketClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Username returns the token subject.
func (c *TicketClaims) Username() string {
	return c.RegisteredClaims.Subject
}

// Expires returns the expiration time.
func (c *TicketClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance time.
func (c *TicketClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ensureTokenID assigns a jti so two tokens minted in the same
// instant remain distinct credentials.
func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
