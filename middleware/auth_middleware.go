package middleware

import (
	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/anjiri1684/studlyf_network/auth"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const identityKey = "uid"

// Protected resolves the caller identity from the Authorization header and
// stores it for Identity. Every failure is a 401.
func Protected(v auth.Verifier) fiber.Handler {
	if jv, ok := v.(*auth.JWTVerifier); ok {
		return jwtware.New(jwtware.Config{
			SigningKey:     jv.SigningKey(),
			SigningMethod:  "HS256",
			ErrorHandler:   jwtError,
			SuccessHandler: jwtSuccess,
		})
	}

	return func(c *fiber.Ctx) error {
		token := auth.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return apperrors.Authentication("missing or malformed token")
		}
		uid, err := v.Verify(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(identityKey, uid)
		return c.Next()
	}
}

func jwtSuccess(c *fiber.Ctx) error {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return apperrors.Authentication("invalid or expired token")
	}
	uid, err := auth.IdentityFromToken(token)
	if err != nil {
		return err
	}
	c.Locals(identityKey, uid)
	return c.Next()
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return apperrors.Authentication("missing or malformed token")
	}
	return apperrors.Wrap(apperrors.KindAuthentication, err, "invalid or expired token")
}

// Identity is the verified caller identity set by Protected.
func Identity(c *fiber.Ctx) string {
	uid, _ := c.Locals(identityKey).(string)
	return uid
}
