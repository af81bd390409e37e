package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"ecotrack/internal/domain/entity"
	"ecotrack/internal/usecase"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyIDToken checks a client-side Firebase ID token and returns the
// identity it carries. Tokens without a verified e-mail are rejected.
func (f *FirebaseAuthClient) VerifyIDToken(ctx context.Context, idToken string) (*usecase.FederatedIdentity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return identityFromClaims(token.Claims)
}

func identityFromClaims(claims map[string]interface{}) (*usecase.FederatedIdentity, error) {
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("token has no email claim")
	}
	if verified, ok := claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("email %s is not verified", email)
	}

	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return &usecase.FederatedIdentity{
		Email:    email,
		Name:     name,
		Photo:    picture,
		Provider: entity.ProviderFirebase,
	}, nil
}
