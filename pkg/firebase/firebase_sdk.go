package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog/log"
)

// TokenVerifier checks identity platform id tokens against the project the
// application default credentials belong to.
type TokenVerifier struct {
	client *auth.Client
}

func NewTokenVerifier(ctx context.Context) (*TokenVerifier, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting firebase auth client: %w", err)
	}
	log.Info().Msg("Firebase token verifier ready")
	return &TokenVerifier{client: client}, nil
}

func (v *TokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return v.client.VerifyIDToken(ctx, idToken)
}
