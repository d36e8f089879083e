package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/and161185/task-keeper/internal/errs"
)

// errorHandler maps domain errors to structured JSON responses. Expected
// conditions come back with a stable category message; anything unrecognized
// is logged and surfaced as a generic 500 without internal detail.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if ve, ok := errs.AsValidation(err); ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	}

	status := errStatus(err)
	if status == fiber.StatusInternalServerError {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			// Transport-level errors (bad JSON, method not allowed, 404 route).
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		s.log.Error("internal error", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(status).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// errStatus returns the HTTP status for a domain error, defaulting to 500.
func errStatus(err error) int {
	if _, ok := errs.AsValidation(err); ok {
		return fiber.StatusBadRequest
	}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, errs.ErrUsernameTaken), errors.Is(err, errs.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrInvalidToken),
		errors.Is(err, errs.ErrExpiredToken),
		errors.Is(err, errs.ErrUnauthenticated),
		errors.Is(err, errs.ErrUnknownSubject):
		return fiber.StatusUnauthorized
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
