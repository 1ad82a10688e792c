package auth

import (
	"context"
	"strings"
)

// Verifier turns a bearer credential into the caller's identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
