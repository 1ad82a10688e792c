package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/studlyf_network/apperrors"
	"github.com/golang-jwt/jwt/v4"
)

// identityClaims are checked in order; the first non-empty string wins.
var identityClaims = []string{"uid", "user_id", "sub"}

// JWTVerifier accepts HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) SigningKey() []byte { return v.secret }

func (v *JWTVerifier) Verify(_ context.Context, credential string) (string, error) {
	if credential == "" {
		return "", apperrors.Authentication("missing credential")
	}
	token, err := jwt.Parse(credential, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperrors.Wrap(apperrors.KindAuthentication, err, "invalid or expired token")
	}
	return IdentityFromToken(token)
}

// IdentityFromToken reads the identity claim of an already validated token.
func IdentityFromToken(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apperrors.Authentication("unexpected token claims")
	}
	for _, name := range identityClaims {
		if s, ok := claims[name].(string); ok && s != "" {
			return s, nil
		}
	}
	return "", apperrors.Authentication("token carries no identity")
}

// Sign issues a token for uid. Used by tooling and tests.
func (v *JWTVerifier) Sign(uid string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"uid": uid,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
