package handlers

import (
	"github.com/anjiri1684/studlyf_network/middleware"
	"github.com/gofiber/fiber/v2"
)

// UploadCertificate stores a certificate image from the multipart field
// "image" and returns its URL.
func (h *Handler) UploadCertificate(c *fiber.Ctx) error {
	up, closeUpload, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer closeUpload()

	stored, err := h.Profiles.UploadCertificate(c.UserContext(), middleware.Identity(c), up)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"url":  stored.URL,
		"name": stored.Name,
	})
}
