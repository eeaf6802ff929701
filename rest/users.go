package rest

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/mgiroux/ticketd/auth"
	"github.com/mgiroux/ticketd/store"
)

// UsersController serves the users API: registration, profile
// updates, listing, the per-user ticket view, and login.
type UsersController struct {
	users  *store.Users
	auther *auth.Auther
	hash   func(password string) (string, error)
	logger auth.Logger
}

// NewUsersController returns a UsersController.
func NewUsersController(users *store.Users, auther *auth.Auther) *UsersController {
	return &UsersController{
		users:  users,
		auther: auther,
		hash:   auth.HashPassword,
		logger: nopLogger{},
	}
}

// WithPasswordHasher overrides the password hashing function, used to
// apply the configured bcrypt cost.
func (u *UsersController) WithPasswordHasher(hash func(string) (string, error)) *UsersController {
	if hash != nil {
		u.hash = hash
	}
	return u
}

// WithLogger overrides the logger.
func (u *UsersController) WithLogger(logger auth.Logger) *UsersController {
	if logger != nil {
		u.logger = logger
	}
	return u
}

// List handles GET /users.
func (u *UsersController) List(c *fiber.Ctx) error {
	users, err := u.users.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// Create handles POST /users: registration. A taken username or email
// is a conflict, checked up front and backed by the unique indexes
// for concurrent writers.
func (u *UsersController) Create(c *fiber.Ctx) error {
	payload := new(UserPayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(err, "Unable to save null object")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(err, err.Error())
	}

	if _, err := u.users.FindByUsernameOrEmail(c.UserContext(), payload.Username, payload.Email); err == nil {
		return store.ErrDuplicateUser
	} else if !errors.IsNotFound(err) {
		return err
	}

	hash, err := u.hash(payload.Password)
	if err != nil {
		return err
	}

	user := &store.User{
		Email:        payload.Email,
		Username:     payload.Username,
		PasswordHash: hash,
		Enabled:      true,
	}

	if _, err := u.users.Create(c.UserContext(), user); err != nil {
		return err
	}

	u.logger.Debug("user registered", "username", user.Username)
	return c.SendStatus(fiber.StatusCreated)
}

// Update handles PUT /users/:id: email and username only.
func (u *UsersController) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	payload := new(UserUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(err, "Unable to update object with null value")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(err, err.Error())
	}

	user, err := u.users.Find(c.UserContext(), id)
	if err != nil {
		return err
	}

	user.Email = payload.Email
	user.Username = payload.Username

	if _, err := u.users.Update(c.UserContext(), user); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Tickets handles GET /users/:id/ticket.
func (u *UsersController) Tickets(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	tickets, err := u.users.Tickets(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(tickets)
}

// Login handles POST /users/login and returns the bearer token.
func (u *UsersController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(err, "Username or password not found")
	}

	token, err := u.auther.Login(c.UserContext(), payload.Username, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(token)
}

func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil {
		return 0, badRequest(err, "Unable to parse identifier")
	}
	return id, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// defLogger is the fallback logger the app is built with when none is
// injected. Unexpected faults must leave a trace even in a default
// deployment.
type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] REST "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] REST "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] REST "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] REST "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
