package auth

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
)

// Identity is a verified caller: the subset of the decoded ID token the
// rest of the application needs.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// Verifier wraps the Firebase Auth client behind the two operations the
// workflows use: token verification and best-effort account deletion.
type Verifier struct {
	client *fbauth.Client
}

func NewVerifier(client *fbauth.Client) *Verifier {
	return &Verifier{client: client}
}

// Verify validates an ID token and extracts the caller identity. Any
// verification failure is an authentication error for the whole request.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}

	id := &Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	if picture, ok := token.Claims["picture"].(string); ok {
		id.PhotoURL = picture
	}
	return id, nil
}

// DeleteAccount removes the identity-provider account for a uid. Callers
// that treat this as best-effort are expected to swallow the error.
func (v *Verifier) DeleteAccount(ctx context.Context, uid string) error {
	return v.client.DeleteUser(ctx, uid)
}
