package handlers

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/auth"
	"github.com/anjiri1684/studlyf_network/services"
	"github.com/anjiri1684/studlyf_network/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// RealtimeOptions configures the websocket endpoint.
type RealtimeOptions struct {
	// TrustClientIdentity accepts a bare uid query parameter without a
	// credential. Only for deployments behind a trusted gateway.
	TrustClientIdentity bool
	SendBuffer          int
	PingInterval        time.Duration
	WriteTimeout        time.Duration
}

type Handler struct {
	Messages     *services.MessagingService
	Connections  *services.ConnectionService
	Profiles     *services.ProfileService
	Hub          *websocket.Hub
	Verifier     auth.Verifier
	Realtime     RealtimeOptions
	ProfileLimit int
	Log          *zap.SugaredLogger
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Validation("cannot parse request body")
	}
	return validateStruct(out)
}

func validateStruct(out any) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return apperrors.Validation("%s is required", fe.Field())
		}
		return apperrors.Validation("%s is invalid", fe.Field())
	}
	return apperrors.Validation("invalid request")
}

// ErrorHandler renders every error returned by a handler as the JSON error
// body. Internal causes are logged, never returned.
func ErrorHandler(log *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := apperrors.StatusCode(err)
		message := apperrors.PublicMessage(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Errorw("request failed", "error", err, "path", c.Path(), "method", c.Method())
		} else {
			log.Debugw("request rejected", "error", err, "status", code, "path", c.Path())
		}
		return c.Status(code).JSON(fiber.Map{
			"status":  "error",
			"code":    code,
			"message": message,
			"error":   message,
		})
	}
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
