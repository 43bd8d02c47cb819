package auth

import (
	"context"
	"testing"
	"time"

	"github.com/isdelr/account-service/internal/models"
	"github.com/isdelr/account-service/internal/security"
	"github.com/isdelr/account-service/internal/store"
	"github.com/stretchr/testify/require"
)

// seedUser inserts a user with the given password and session token.
func seedUser(t *testing.T, s store.Store, username, password, token string) models.User {
	t.Helper()
	salt := security.RandomString(security.DefaultSaltLength)
	now := time.Now().UTC()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: security.Hash(salt, password),
		Salt:         salt,
		AuthToken:    token,
		LastLogin:    now,
		Created:      now,
		Updated:      now,
	}
	id, err := s.InsertOne(context.Background(), UsersCollection, u)
	require.NoError(t, err)
	u.ID = id
	return u
}
