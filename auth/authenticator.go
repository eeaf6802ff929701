package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
)

// Auther verifies credentials against an IdentityProvider and issues
// bearer tokens through a TokenService. It holds no per-session
// state: a successful login produces a token and nothing else.
type Auther struct {
	provider IdentityProvider
	tokens   *TokenService
	logger   Logger
}

// NewAuthenticator returns a new Auther.
func NewAuthenticator(provider IdentityProvider, tokens *TokenService) *Auther {
	return &Auther{
		provider: provider,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

// WithLogger overrides the logger.
func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// TokenService returns the TokenService used by this authenticator.
func (s *Auther) TokenService() *TokenService {
	return s.tokens
}

// Login validates a username/password pair and returns a signed
// token. Every authentication failure beyond missing input collapses
// into one undifferentiated unauthorized error so callers cannot
// probe which usernames exist.
func (s *Auther) Login(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", ErrMissingCredentials
	}

	identity, err := s.provider.VerifyIdentity(ctx, username, password)
	if err != nil {
		s.logger.Debug("Login verify identity failed", "username", username, "error", err)
		var richErr *errors.Error
		if errors.As(err, &richErr) && richErr.Category == errors.CategoryAuth {
			return "", richErr
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to verify identity")
	}

	token, err := s.tokens.Generate(identity)
	if err != nil {
		s.logger.Error("Login token generation failed", "error", err)
		return "", err
	}

	s.logger.Debug("Login succeeded", "username", username)
	return token, nil
}

// ResolveIdentity validates a raw token and resolves its subject
// against the identity provider. The request authentication filter
// uses it once per inbound request.
func (s *Auther) ResolveIdentity(ctx context.Context, raw string) (Identity, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	identity, err := s.provider.FindIdentityByUsername(ctx, claims.Username())
	if err != nil {
		s.logger.Debug("ResolveIdentity lookup failed", "subject", claims.Username(), "error", err)
		return nil, err
	}

	return identity, nil
}
