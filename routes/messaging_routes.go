package routes

import (
	"github.com/anjiri1684/studlyf_network/handlers"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func MessagingRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	messages := api.Group("/messages", protected)
	messages.Post("/send", h.SendMessage)
	messages.Post("/send-image", h.SendImage)
	messages.Post("/send-file", h.SendFile)
	messages.Post("/forward", h.ForwardMessage)
	// Registered before /:uid1/:uid2, which would otherwise match it.
	messages.Get("/unread-counts/:uid", h.GetUnreadCounts)
	messages.Get("/:uid1/:uid2", h.GetConversation)
	messages.Patch("/:peerId/read", h.MarkRead)

	api.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	api.Get("/ws", websocket.New(h.ServeWs))
}
