package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/pastpaper/pastpaper-be/internal/pkg/apperr"
)

// statusForError maps engine error kinds onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrInvalidState), errors.Is(err, apperr.ErrExhausted):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, apperr.ErrBackendUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, apperr.ErrUngradable):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
