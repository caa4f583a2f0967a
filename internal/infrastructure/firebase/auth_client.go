package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

// VerifyToken validates an ID token and returns the caller's uid plus the
// role custom claim ("admin" or "store").
func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", "", err
	}

	role := "store"
	if claim, ok := result.Claims["role"].(string); ok && claim != "" {
		role = claim
	}

	return result.UID, role, nil
}

func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	// Listing a single user exercises credentials without side effects.
	it := f.client.Users(ctx, "")
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return err
	}
	return nil
}
