package route

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pastpaper/pastpaper-be/internal/delivery/http/handler"
	"github.com/pastpaper/pastpaper-be/internal/delivery/http/middleware"
)

type RouteConfig struct {
	Api             *fiber.App
	Middleware      *middleware.Middleware
	PracticeHandler handler.PracticeHandler
	ProgressHandler handler.ProgressHandler
	ChatHandler     handler.ChatHandler
	RagHandler      handler.RagHandler
}

func Setup(c *RouteConfig) {
	c.Api.Use(recover.New())
	c.Api.Use(logger.New(logger.Config{
		Format: "[${ip}]:${port} ${status} - ${method} ${path}\n",
	}))
	c.Api.Use(c.Middleware.CorsMiddleware())

	SetupPracticeRoute(c.Api, c.PracticeHandler, c.Middleware)
	SetupProgressRoute(c.Api, c.ProgressHandler, c.Middleware)
	SetupChatRoute(c.Api, c.ChatHandler, c.Middleware)
	SetupRagRoute(c.Api, c.RagHandler, c.Middleware)
}
