package auth

import (
	"context"

	"github.com/isdelr/account-service/internal/models"
	"github.com/isdelr/account-service/internal/store"
)

// TokenAuthenticator resolves a session token back to the user that owns it.
// Tokens do not expire; one stays valid until a new login replaces it or a
// password change clears it.
type TokenAuthenticator struct {
	store store.Store
}

// NewTokenAuthenticator creates a TokenAuthenticator.
func NewTokenAuthenticator(s store.Store) *TokenAuthenticator {
	return &TokenAuthenticator{store: s}
}

// Authenticate returns the user whose stored auth_token equals token.
// An empty token means none was presented.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrMissingToken
	}

	var user models.User
	found, err := a.store.FindOne(ctx, UsersCollection, store.Filter{"auth_token": token}, &user)
	if err != nil {
		return models.User{}, fromStoreError(err)
	}
	if !found {
		return models.User{}, ErrBadToken
	}
	return user, nil
}
