package handlers

import (
	"github.com/anjiri1684/studlyf_network/middleware"
	"github.com/gofiber/fiber/v2"
)

type ConnectionRequestBody struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

func (h *Handler) GetConnections(c *fiber.Ctx) error {
	conns, err := h.Connections.ListConnections(c.UserContext(), middleware.Identity(c), c.Params("uid"))
	if err != nil {
		return err
	}
	return c.JSON(conns)
}

func (h *Handler) GetConnectionRequests(c *fiber.Ctx) error {
	reqs, err := h.Connections.ListRequests(c.UserContext(), middleware.Identity(c), c.Params("uid"))
	if err != nil {
		return err
	}
	return c.JSON(reqs)
}

func (h *Handler) RequestConnection(c *fiber.Ctx) error {
	var body ConnectionRequestBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	req, err := h.Connections.Request(c.UserContext(), middleware.Identity(c), body.From, body.To)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *Handler) AcceptConnection(c *fiber.Ctx) error {
	var body ConnectionRequestBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	conn, err := h.Connections.Accept(c.UserContext(), middleware.Identity(c), body.From, body.To)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "connection": conn})
}

func (h *Handler) RejectConnection(c *fiber.Ctx) error {
	var body ConnectionRequestBody
	if err := parseBody(c, &body); err != nil {
		return err
	}

	if err := h.Connections.Reject(c.UserContext(), middleware.Identity(c), body.From, body.To); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
