package store

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ErrDuplicateUser is returned when a username or email is already taken.
var ErrDuplicateUser = errors.New("Duplicate username or email", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("DUPLICATE_USER")

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("User not found.", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode("USER_NOT_FOUND")

// Users is the credential store consumed by the auth core and the
// user endpoints.
type Users struct {
	db *bun.DB
}

// NewUsers returns a Users repository bound to db.
func NewUsers(db *bun.DB) *Users {
	return &Users{db: db}
}

// Find retrieves a user by id.
func (r *Users) Find(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}

	return user, nil
}

// FindByUsername retrieves a user by its unique username.
func (r *Users) FindByUsername(ctx context.Context, username string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}

	return user, nil
}

// FindByUsernameOrEmail retrieves a user matching either unique column.
// Registration uses it to detect duplicates before insert.
func (r *Users) FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.username = ?", username).
				WhereOr("?TableAlias.email = ?", email)
		}).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user")
	}

	return user, nil
}

// List returns all users.
func (r *Users) List(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := r.db.NewSelect().Model(&users).Order("id ASC").Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}
	return users, nil
}

// Create inserts a new user. The unique indexes on username and email
// are the backstop against concurrent writers.
func (r *Users) Create(ctx context.Context, user *User) (*User, error) {
	if _, err := r.db.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create user")
	}
	return user, nil
}

// Update persists mutable profile fields of an existing user.
func (r *Users) Update(ctx context.Context, user *User) (*User, error) {
	res, err := r.db.NewUpdate().
		Model(user).
		Column("email", "username").
		Set("updated_at = current_timestamp").
		WherePK().
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to update user")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// Tickets returns the tickets assigned to the given user.
func (r *Users) Tickets(ctx context.Context, userID int64) ([]*Ticket, error) {
	if _, err := r.Find(ctx, userID); err != nil {
		return nil, err
	}

	var tickets []*Ticket
	err := r.db.NewSelect().
		Model(&tickets).
		Where("?TableAlias.user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list user tickets")
	}

	return tickets, nil
}
