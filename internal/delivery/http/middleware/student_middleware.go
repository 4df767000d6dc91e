package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// StudentIdentity reads the caller's student id from the X-Student-ID
// header and stores it in the request locals for the handlers.
func (m *Middleware) StudentIdentity() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		raw := ctx.Get("X-Student-ID")
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "X-Student-ID header is required")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "X-Student-ID must be a valid UUID")
		}
		ctx.Locals("student_id", id)
		return ctx.Next()
	}
}

// OptionalStudentIdentity stores the student id when the header is
// present and valid, and lets anonymous requests through.
func (m *Middleware) OptionalStudentIdentity() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if raw := ctx.Get("X-Student-ID"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				ctx.Locals("student_id", id)
			}
		}
		return ctx.Next()
	}
}
