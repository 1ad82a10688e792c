package routes

import (
	"github.com/anjiri1684/studlyf_network/handlers"
	"github.com/anjiri1684/studlyf_network/metrics"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App, h *handlers.Handler) {
	app.Get("/health", handlers.Health)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api/v1")
	api.Get("/health", handlers.Health)
	api.Get("/users", h.ListUsers)
}

// Register mounts every route group. protected guards all authenticated
// endpoints.
func Register(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	PublicRoutes(app, h)
	ProfileRoutes(app, h, protected)
	ConnectionRoutes(app, h, protected)
	MessagingRoutes(app, h, protected)
}
