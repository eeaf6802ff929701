package rest

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/mgiroux/ticketd/store"
)

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// UserPayload is the registration payload.
type UserPayload struct {
	Email    string `form:"email" json:"email"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r UserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(2, 64),
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(6, 128),
		),
	)
}

// UserUpdatePayload carries the mutable profile fields.
type UserUpdatePayload struct {
	Email    string `form:"email" json:"email"`
	Username string `form:"username" json:"username"`
}

// Validate will run validation rules
func (r UserUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Username,
			validation.Required,
			validation.Length(2, 64),
		),
	)
}

// TicketPayload is the create/update payload for tickets.
type TicketPayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Status      string `form:"status" json:"status"`
}

// Validate will run validation rules
func (r TicketPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Title,
			validation.Required,
			validation.Length(1, 255),
		),
		validation.Field(
			&r.Status,
			validation.In(
				store.StatusOpen,
				store.StatusInProgress,
				store.StatusDone,
				store.StatusCancelled,
			),
		),
	)
}

func (r TicketPayload) toModel() *store.Ticket {
	return &store.Ticket{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
	}
}
