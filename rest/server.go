// Package rest wires the ticketd HTTP surface: controllers, request
// authentication, access enforcement, and boundary error mapping.
package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mgiroux/ticketd/auth"
	"github.com/mgiroux/ticketd/middleware/authware"
	"github.com/mgiroux/ticketd/store"
)

// DefaultPublicRoutes are the paths that skip authentication: login,
// registration, documentation, and health. Everything else requires
// an identity.
var DefaultPublicRoutes = []string{
	"POST /users/login",
	"POST /users",
	"GET /health",
	"GET /docs",
	"GET /docs/*",
}

// Deps carries everything the HTTP layer needs, built once in the
// composition root.
type Deps struct {
	Auther  *auth.Auther
	Users   *store.Users
	Tickets *store.Tickets
	// HashPassword applies the configured bcrypt cost at registration.
	// Defaults to auth.HashPassword.
	HashPassword func(string) (string, error)
	// PublicRoutes defaults to DefaultPublicRoutes.
	PublicRoutes []string
	Logger       auth.Logger
}

// New builds the fiber application with every route registered.
func New(deps Deps) *fiber.App {
	logger := deps.Logger
	if logger == nil {
		logger = defLogger{}
	}

	publicRoutes := deps.PublicRoutes
	if publicRoutes == nil {
		publicRoutes = DefaultPublicRoutes
	}

	app := fiber.New(fiber.Config{
		AppName:               "ticketd",
		ErrorHandler:          NewErrorHandler(logger),
		DisableStartupMessage: true,
	})

	app.Use(authware.New(authware.Config{
		Resolver:     deps.Auther,
		PublicRoutes: publicRoutes,
		Logger:       logger,
	}))

	guard := authware.RequireIdentity()

	users := NewUsersController(deps.Users, deps.Auther).
		WithLogger(logger).
		WithPasswordHasher(deps.HashPassword)
	tickets := NewTicketsController(deps.Tickets).
		WithLogger(logger)

	app.Get("/health", health)
	app.Get("/docs", docs)

	app.Post("/users/login", users.Login)
	app.Post("/users", users.Create)
	app.Get("/users", guard, users.List)
	app.Put("/users/:id", guard, users.Update)
	app.Get("/users/:id/ticket", guard, users.Tickets)

	group := app.Group("/tickets", guard)
	group.Get("/", tickets.List)
	group.Post("/", tickets.Create)
	group.Get("/:id", tickets.Get)
	group.Put("/:id", tickets.Update)
	group.Delete("/:id", tickets.Delete)
	group.Put("/:ticketId/assign/:userId", tickets.Assign)

	return app
}

func health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// docs serves a minimal machine-readable route index.
func docs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "ticketd",
		"routes": []string{
			"POST /users/login",
			"POST /users",
			"GET /users",
			"PUT /users/:id",
			"GET /users/:id/ticket",
			"GET /tickets",
			"POST /tickets",
			"GET /tickets/:id",
			"PUT /tickets/:id",
			"DELETE /tickets/:id",
			"PUT /tickets/:ticketId/assign/:userId",
		},
	})
}
