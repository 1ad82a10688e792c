package handlers

import (
	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/middleware"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/gofiber/fiber/v2"
)

type RegisterUserRequest struct {
	UID      string `json:"uid" validate:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`
}

// RegisterUser is called by clients right after login.
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.Profiles.Register(c.UserContext(), middleware.Identity(c), &models.Profile{
		UID:      req.UID,
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	user, err := h.Profiles.Get(c.UserContext(), middleware.Identity(c), c.Params("uid"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) GetPublicProfile(c *fiber.Ctx) error {
	user, err := h.Profiles.GetPublic(c.UserContext(), c.Params("uid"))
	if err != nil {
		return err
	}
	return c.JSON(user.Public())
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	if h.ProfileLimit > 0 && len(c.Body()) > h.ProfileLimit {
		return apperrors.Validation("profile data exceeds %dKB limit", h.ProfileLimit/1024)
	}

	var req models.ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("cannot parse request body")
	}

	user, err := h.Profiles.Update(c.UserContext(), middleware.Identity(c), c.Params("uid"), &req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Profiles.Directory(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}
