package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"time"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/middleware"
	"github.com/anjiri1684/studlyf_network/models"
	"github.com/anjiri1684/studlyf_network/services"
	"github.com/anjiri1684/studlyf_network/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type SendMessageRequest struct {
	From string `json:"from" form:"from" validate:"required"`
	To   string `json:"to" form:"to" validate:"required"`
	Text string `json:"text" form:"text" validate:"required"`
}

type SendMediaRequest struct {
	From string `json:"from" form:"from" validate:"required"`
	To   string `json:"to" form:"to" validate:"required"`
}

type ForwardMessageRequest struct {
	From      string `json:"from" validate:"required"`
	To        string `json:"to" validate:"required"`
	MessageID string `json:"messageId" validate:"required"`
}

func (h *Handler) SendMessage(c *fiber.Ctx) error {
	var req SendMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.Messages.SendText(c.UserContext(), middleware.Identity(c), req.From, req.To, req.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *Handler) SendImage(c *fiber.Ctx) error {
	return h.sendMedia(c, "image", h.Messages.SendImage)
}

func (h *Handler) SendFile(c *fiber.Ctx) error {
	return h.sendMedia(c, "file", h.Messages.SendFile)
}

type mediaSender func(ctx context.Context, caller, from, to string, up *services.Upload) (*models.Message, error)

func (h *Handler) sendMedia(c *fiber.Ctx, field string, send mediaSender) error {
	var req SendMediaRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	up, closeUpload, err := formUpload(c, field)
	if err != nil {
		return err
	}
	defer closeUpload()

	msg, err := send(c.UserContext(), middleware.Identity(c), req.From, req.To, up)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// formUpload opens the multipart file in field. A missing file yields a nil
// upload so the service reports it.
func formUpload(c *fiber.Ctx, field string) (*services.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, func() {}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to read upload")
	}
	return uploadFrom(fh, f), func() { _ = f.Close() }, nil
}

func uploadFrom(fh *multipart.FileHeader, f multipart.File) *services.Upload {
	return &services.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}
}

func (h *Handler) ForwardMessage(c *fiber.Ctx) error {
	var req ForwardMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	msg, err := h.Messages.Forward(c.UserContext(), middleware.Identity(c), req.From, req.To, req.MessageID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *Handler) GetConversation(c *fiber.Ctx) error {
	msgs, err := h.Messages.ListBetween(c.UserContext(), middleware.Identity(c), c.Params("uid1"), c.Params("uid2"))
	if err != nil {
		return err
	}
	return c.JSON(msgs)
}

func (h *Handler) GetUnreadCounts(c *fiber.Ctx) error {
	counts, err := h.Messages.UnreadCounts(c.UserContext(), middleware.Identity(c), c.Params("uid"))
	if err != nil {
		return err
	}
	return c.JSON(counts)
}

func (h *Handler) MarkRead(c *fiber.Ctx) error {
	receipt, err := h.Messages.MarkRead(c.UserContext(), middleware.Identity(c), c.Params("peerId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"modified": receipt.Modified})
}

type authFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

const authFrameWait = 10 * time.Second

// ServeWs joins the connection to the channel of its verified identity and
// streams realtime events until the client goes away.
func (h *Handler) ServeWs(c *websocketcontrib.Conn) {
	uid, err := h.realtimeIdentity(c)
	if err != nil {
		h.Log.Infow("websocket auth failed", "error", err)
		_ = c.WriteJSON(fiber.Map{"event": "error", "data": fiber.Map{"message": apperrors.PublicMessage(err)}})
		_ = c.Close()
		return
	}

	client := websocket.NewClient(uid, h.Realtime.SendBuffer)
	if h.Hub.Join(uid, client) == 1 && h.Profiles != nil {
		h.Profiles.SetOnline(context.Background(), uid, true)
	}
	h.Log.Debugw("websocket client registered", "uid", uid)

	done := make(chan struct{})
	go func() {
		client.WritePump(c, h.Realtime.PingInterval, h.Realtime.WriteTimeout)
		close(done)
	}()

	err = client.ReadPump(c)
	if websocketcontrib.IsUnexpectedCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
		h.Log.Debugw("websocket read error", "uid", uid, "error", err)
	}

	remaining := h.Hub.Leave(client)
	<-done
	if remaining == 0 && h.Profiles != nil {
		h.Profiles.SetOnline(context.Background(), uid, false)
	}
	h.Log.Debugw("websocket client unregistered", "uid", uid)
}

// realtimeIdentity takes the credential from the token query parameter or,
// failing that, from a first {"type":"auth"} frame.
func (h *Handler) realtimeIdentity(c *websocketcontrib.Conn) (string, error) {
	if token := c.Query("token"); token != "" {
		return h.verify(token)
	}
	if h.Realtime.TrustClientIdentity {
		if uid := c.Query("uid"); uid != "" {
			return uid, nil
		}
	}

	_ = c.SetReadDeadline(time.Now().Add(authFrameWait))
	_, data, err := c.ReadMessage()
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindAuthentication, err, "missing auth message")
	}
	_ = c.SetReadDeadline(time.Time{})

	var frame authFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Type != "auth" {
		return "", apperrors.Authentication("invalid or missing auth message")
	}
	return h.verify(frame.Token)
}

func (h *Handler) verify(token string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.Verifier.Verify(ctx, token)
}
