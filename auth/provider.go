package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/mgiroux/ticketd/store"
)

// UserTracker is the slice of the user store the provider needs.
type UserTracker interface {
	FindByUsername(ctx context.Context, username string) (*store.User, error)
}

// UserProvider implements IdentityProvider on top of the user store.
type UserProvider struct {
	store  UserTracker
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider.
func NewUserProvider(store UserTracker) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

// WithLogger overrides the logger.
func (u *UserProvider) WithLogger(logger Logger) *UserProvider {
	if logger != nil {
		u.logger = logger
	}
	return u
}

// VerifyIdentity will find the user, compare the password, and return
// the identity. Unknown users and wrong passwords yield the same
// error.
func (u *UserProvider) VerifyIdentity(ctx context.Context, username, password string) (Identity, error) {
	user, err := u.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ensureAuthenticatableUser(user); err != nil {
		return nil, err
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return identityFromUser(user), nil
}

// FindIdentityByUsername resolves a token subject back to an active
// identity. Disabled and locked accounts resolve to nothing even when
// they hold a valid token.
func (u *UserProvider) FindIdentityByUsername(ctx context.Context, username string) (Identity, error) {
	user, err := u.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := ensureAuthenticatableUser(user); err != nil {
		return nil, err
	}

	return identityFromUser(user), nil
}

func ensureAuthenticatableUser(user *store.User) error {
	if user == nil {
		return ErrInvalidCredentials
	}
	if !user.Enabled {
		return ErrAccountDisabled
	}
	if user.Locked {
		return ErrAccountLocked
	}
	return nil
}

type authIdentity struct {
	id       int64
	username string
	email    string
}

func (a authIdentity) ID() int64 {
	return a.id
}

func (a authIdentity) Username() string {
	return a.username
}

func (a authIdentity) Email() string {
	return a.email
}

var _ Identity = authIdentity{}

func identityFromUser(user *store.User) Identity {
	return authIdentity{
		id:       user.ID,
		username: user.Username,
		email:    user.Email,
	}
}
