package routes

import (
	"github.com/anjiri1684/studlyf_network/handlers"
	"github.com/gofiber/fiber/v2"
)

func ProfileRoutes(app *fiber.App, h *handlers.Handler, protected fiber.Handler) {
	api := app.Group("/api/v1")

	api.Post("/user", protected, h.RegisterUser)

	profile := api.Group("/profile", protected)
	profile.Post("/certificates/upload", h.UploadCertificate)
	profile.Get("/:uid/public", h.GetPublicProfile)
	profile.Get("/:uid", h.GetProfile)
	profile.Post("/:uid", h.UpdateProfile)
}
