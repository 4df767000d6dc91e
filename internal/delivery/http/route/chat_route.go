package route

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/handler"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/middleware"
)

func SetupChatRoute(api *fiber.App, h handler.ChatHandler, m *middleware.Middleware) {
	chat := api.Group("/api/chat", m.StudentIdentity())

	chat.Post("/sessions", h.CreateSession)
	chat.Get("/sessions", h.ListSessions)
	chat.Post("/sessions/:session_id/messages", h.SendMessage)
	chat.Get("/sessions/:session_id/history", h.GetHistory)
	chat.Delete("/sessions/:session_id", h.DeleteSession)
}
