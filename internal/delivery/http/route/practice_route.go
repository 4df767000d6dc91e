package route

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/handler"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/middleware"
)

func SetupPracticeRoute(api *fiber.App, h handler.PracticeHandler, m *middleware.Middleware) {
	practice := api.Group("/api/practice", m.StudentIdentity())

	practice.Post("/sessions", h.StartSession)
	practice.Get("/sessions", h.ListSessions)
	practice.Get("/sessions/:session_id", h.GetSession)
	practice.Get("/sessions/:session_id/next", h.NextQuestion)
	practice.Post("/sessions/:session_id/answer", h.SubmitAnswer)
	practice.Post("/sessions/:session_id/complete", h.CompleteSession)
	practice.Post("/sessions/:session_id/abandon", h.AbandonSession)
}

func SetupProgressRoute(api *fiber.App, h handler.ProgressHandler, m *middleware.Middleware) {
	progress := api.Group("/api/progress", m.StudentIdentity())

	progress.Get("/", h.GetProgress)
}
