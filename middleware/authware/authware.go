// Package authware provides the per-request authentication filter and
// the access enforcement guard for fiber applications.
//
// The filter runs on every request before business handlers. It never
// rejects a request itself: a missing, malformed, expired, or
// tampered token simply leaves the request without an identity, and
// the guard rejects protected paths uniformly. That keeps the wire
// response identical regardless of why authentication failed.
package authware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mgiroux/ticketd/auth"
)

// DefaultContextKey is where the resolved identity is stored in the
// fiber locals.
const DefaultContextKey = "identity"

// IdentityResolver turns a raw bearer token into an Identity. It
// mirrors Auther.ResolveIdentity without importing its concrete type.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, token string) (auth.Identity, error)
}

// Config holds the filter configuration.
type Config struct {
	// Resolver is required.
	Resolver IdentityResolver
	// ContextKey is the fiber locals key for the identity. Defaults
	// to DefaultContextKey.
	ContextKey string
	// AuthScheme is the expected Authorization scheme. Defaults to
	// "Bearer".
	AuthScheme string
	// PublicRoutes lists "METHOD /path" entries that skip token
	// processing entirely. A trailing "/*" matches by prefix.
	PublicRoutes []string
	// Filter is an optional extra skip hook; returning true bypasses
	// the middleware for that request.
	Filter func(c *fiber.Ctx) bool
	// Logger defaults to a no-op.
	Logger auth.Logger
}

func (cfg *Config) setDefaults() {
	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
}

// New builds the request authentication filter.
func New(config Config) fiber.Handler {
	cfg := config
	cfg.setDefaults()

	if cfg.Resolver == nil {
		panic("authware: Config.Resolver is required")
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		if isPublicRoute(c.Method(), c.Path(), cfg.PublicRoutes) {
			return c.Next()
		}

		raw := extractToken(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
		if raw == "" {
			return c.Next()
		}

		identity, err := cfg.Resolver.ResolveIdentity(c.UserContext(), raw)
		if err != nil {
			// Leave the request unauthenticated; the guard rejects it
			// uniformly on protected paths.
			cfg.Logger.Debug("authware could not resolve identity", "path", c.Path(), "error", err)
			return c.Next()
		}

		c.Locals(cfg.ContextKey, identity)
		c.SetUserContext(auth.WithIdentity(c.UserContext(), identity))

		return c.Next()
	}
}

// RequireIdentity rejects requests that carry no resolved identity.
// It is evaluated once per protected route, after the filter.
func RequireIdentity(contextKey ...string) fiber.Handler {
	key := DefaultContextKey
	if len(contextKey) > 0 && contextKey[0] != "" {
		key = contextKey[0]
	}

	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromCtx(c, key); !ok {
			return auth.ErrNoIdentity
		}
		return c.Next()
	}
}

// IdentityFromCtx returns the identity the filter attached, if any.
func IdentityFromCtx(c *fiber.Ctx, contextKey ...string) (auth.Identity, bool) {
	key := DefaultContextKey
	if len(contextKey) > 0 && contextKey[0] != "" {
		key = contextKey[0]
	}

	identity, ok := c.Locals(key).(auth.Identity)
	return identity, ok
}

func extractToken(header, scheme string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], scheme) {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func isPublicRoute(method, path string, routes []string) bool {
	for _, route := range routes {
		m, p, found := strings.Cut(route, " ")
		if !found {
			continue
		}
		if m != "*" && !strings.EqualFold(m, method) {
			continue
		}
		if prefix, wildcard := strings.CutSuffix(p, "/*"); wildcard {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
