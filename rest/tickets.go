package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/mgiroux/ticketd/auth"
	"github.com/mgiroux/ticketd/store"
)

// TicketsController serves the tickets API. Every route is behind the
// access guard; the assignment rule additionally requires the target
// user to exist.
type TicketsController struct {
	tickets *store.Tickets
	logger  auth.Logger
}

// NewTicketsController returns a TicketsController.
func NewTicketsController(tickets *store.Tickets) *TicketsController {
	return &TicketsController{
		tickets: tickets,
		logger:  nopLogger{},
	}
}

// WithLogger overrides the logger.
func (t *TicketsController) WithLogger(logger auth.Logger) *TicketsController {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// List handles GET /tickets.
func (t *TicketsController) List(c *fiber.Ctx) error {
	tickets, err := t.tickets.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tickets)
}

// Get handles GET /tickets/:id.
func (t *TicketsController) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	ticket, err := t.tickets.Find(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(ticket)
}

// Create handles POST /tickets. Titles are unique.
func (t *TicketsController) Create(c *fiber.Ctx) error {
	payload := new(TicketPayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(err, "Unable to save null object")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(err, err.Error())
	}

	if _, err := t.tickets.FindByTitle(c.UserContext(), payload.Title); err == nil {
		return store.ErrDuplicateTicketTitle
	} else if !errors.IsNotFound(err) {
		return err
	}

	if _, err := t.tickets.Create(c.UserContext(), payload.toModel()); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusCreated)
}

// Update handles PUT /tickets/:id. Changing a title to one held by a
// different ticket is a conflict.
func (t *TicketsController) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	payload := new(TicketPayload)
	if err := c.BodyParser(payload); err != nil {
		return badRequest(err, "Unable to update ticket with null object")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(err, err.Error())
	}

	ticket, err := t.tickets.Find(c.UserContext(), id)
	if err != nil {
		return err
	}

	if existing, err := t.tickets.FindByTitle(c.UserContext(), payload.Title); err == nil {
		if existing.ID != ticket.ID {
			return store.ErrDuplicateTicketTitle
		}
	} else if !errors.IsNotFound(err) {
		return err
	}

	ticket.Title = payload.Title
	ticket.Description = payload.Description
	if payload.Status != "" {
		ticket.Status = payload.Status
	}

	if _, err := t.tickets.Update(c.UserContext(), ticket); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete handles DELETE /tickets/:id.
func (t *TicketsController) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := t.tickets.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// Assign handles PUT /tickets/:ticketId/assign/:userId.
func (t *TicketsController) Assign(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "ticketId")
	if err != nil {
		return err
	}

	userID, err := parseID(c, "userId")
	if err != nil {
		return err
	}

	if err := t.tickets.Assign(c.UserContext(), ticketID, userID); err != nil {
		return err
	}

	t.logger.Debug("ticket assigned", "ticket", ticketID, "user", userID)
	return c.SendStatus(fiber.StatusNoContent)
}
