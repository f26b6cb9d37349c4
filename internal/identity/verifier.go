package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

var ErrInvalidToken = errors.New("invalid identity token")

// TokenVerifier is the subset of the Firebase auth client used here.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// Verifier turns a bearer ID token into an Identity.
type Verifier struct {
	tokens TokenVerifier
}

func NewVerifier(tokens TokenVerifier) *Verifier {
	return &Verifier{tokens: tokens}
}

// NewFirebaseVerifier builds a Verifier backed by the Firebase Admin SDK using
// application default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID string) (*Verifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return NewVerifier(client), nil
}

// Resolve verifies idToken. An empty token yields the anonymous identity.
func (v *Verifier) Resolve(ctx context.Context, idToken string) (Identity, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Anonymous(), nil
	}
	if v == nil || v.tokens == nil {
		return Identity{}, fmt.Errorf("%w: verifier not configured", ErrInvalidToken)
	}

	tok, err := v.tokens.VerifyIDToken(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	uid := strings.TrimSpace(tok.UID)
	if uid == "" {
		return Identity{}, fmt.Errorf("%w: empty uid", ErrInvalidToken)
	}
	return Authenticated(uid), nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
