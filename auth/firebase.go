package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/anjiri1684/studlyf_network/apperrors"
)

// FirebaseVerifier checks Firebase ID tokens issued to the mobile and web
// clients.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("could not create firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not create firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return "", apperrors.Authentication("missing credential")
	}
	tok, err := v.client.VerifyIDToken(ctx, credential)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindAuthentication, err, "invalid or expired token")
	}
	return tok.UID, nil
}
