package routes

import (
	"github.com/anjiri1684/studlyf_network/handlers"
	"github.com/gofiber/fiber/v2"
)

func ConnectionRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	connections := app.Group("/api/v1/connections", protected)
	connections.Get("/requests/:uid", h.GetConnectionRequests)
	connections.Post("/request", h.RequestConnection)
	connections.Post("/accept", h.AcceptConnection)
	connections.Post("/reject", h.RejectConnection)
	connections.Get("/:uid", h.GetConnections)
}
