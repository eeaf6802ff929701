package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/mgiroux/ticketd/auth"
)

// ErrorEntity is the wire shape of every error response.
type ErrorEntity struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// unauthorizedMessage is the single message for every authentication
// failure. Expired, tampered, and missing tokens, unknown usernames,
// wrong passwords, and inactive accounts must be indistinguishable on
// the wire.
const unauthorizedMessage = "Unauthorized"

// NewErrorHandler builds the fiber error handler that translates the
// error taxonomy into structured responses. Unexpected faults are
// logged and surfaced as a generic internal error without leaking
// internals.
func NewErrorHandler(logger auth.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			status := statusFromCategory(richErr)
			message := richErr.Message

			switch {
			case richErr.Category == errors.CategoryAuth:
				message = unauthorizedMessage
			case status == fiber.StatusInternalServerError:
				logger.Error("unexpected error", "path", c.Path(), "error", err)
				message = "An unexpected error occurred"
			}

			return c.Status(status).JSON(ErrorEntity{Status: status, Message: message})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorEntity{Status: fiberErr.Code, Message: fiberErr.Message})
		}

		logger.Error("unexpected error", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorEntity{
			Status:  fiber.StatusInternalServerError,
			Message: "An unexpected error occurred",
		})
	}
}

func statusFromCategory(err *errors.Error) int {
	switch err.Category {
	case errors.CategoryBadInput, errors.CategoryValidation:
		return fiber.StatusBadRequest
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func badRequest(err error, message string) error {
	return errors.Wrap(err, errors.CategoryBadInput, message).
		WithCode(errors.CodeBadRequest)
}
