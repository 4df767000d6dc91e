package route

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/handler"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/middleware"
)

func SetupRagRoute(api *fiber.App, h handler.RagHandler, m *middleware.Middleware) {
	rag := api.Group("/api/rag", m.OptionalStudentIdentity())

	rag.Post("/query", h.Query)
	rag.Post("/retrieve", h.Retrieve)
}
