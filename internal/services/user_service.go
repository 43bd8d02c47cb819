package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/account-service/internal/auth"
	"github.com/isdelr/account-service/internal/models"
	"github.com/isdelr/account-service/internal/security"
	"github.com/isdelr/account-service/internal/store"
	"github.com/rs/zerolog/log"
)

var (
	// ErrUsernameTaken is returned by CreateUser when the username already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUserNotFound is returned when an identified user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, req models.SignupRequest) (models.User, error)
	StartSession(ctx context.Context, user models.User) (models.User, error)
	UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (models.User, error)
	UpdatePassword(ctx context.Context, id, newPassword string) error
}

// UserService provides business logic for user management.
type UserService struct {
	store     store.Store
	events    EventServiceProvider
	generator security.Generator
	now       func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(s store.Store, events EventServiceProvider, generator security.Generator) *UserService {
	return &UserService{store: s, events: events, generator: generator, now: time.Now}
}

func byID(id string) store.Filter { return store.Filter{store.IDField: id} }

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	found, err := s.store.FindOne(ctx, auth.UsersCollection, byID(id), &user)
	if err != nil {
		return models.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	if !found {
		return models.User{}, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	return user, nil
}

// CreateUser creates a new user with a fresh salt and password hash. The
// existing record is left untouched when the username is already taken.
// The check and the insert are not atomic.
func (s *UserService) CreateUser(ctx context.Context, req models.SignupRequest) (models.User, error) {
	var existing models.User
	found, err := s.store.FindOne(ctx, auth.UsersCollection, store.Filter{"username": req.Username}, &existing)
	if err != nil {
		return models.User{}, fmt.Errorf("check username: %w", err)
	}
	if found {
		return models.User{}, ErrUsernameTaken
	}

	now := s.now().UTC()
	salt := s.generator.Salt()
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: security.Hash(salt, req.Password),
		Salt:         salt,
		LastLogin:    now,
		Created:      now,
		Updated:      now,
	}

	id, err := s.store.InsertOne(ctx, auth.UsersCollection, user)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	user.ID = id

	s.record(ctx, models.EventSignup, "user signed up: "+user.Username, id)
	return user, nil
}

// StartSession issues a new session token for an authenticated user,
// replacing any previous one, and stamps the login time. The returned user
// carries the new token.
func (s *UserService) StartSession(ctx context.Context, user models.User) (models.User, error) {
	token := s.generator.Token()
	now := s.now().UTC()

	err := s.store.UpdateOne(ctx, auth.UsersCollection, byID(user.ID), store.Update{
		Set: map[string]any{
			"auth_token": token,
			"last_login": now,
			"updated":    now,
		},
	})
	if err != nil {
		return models.User{}, fmt.Errorf("store session token: %w", err)
	}

	user.AuthToken = token
	user.LastLogin = now
	user.Updated = now
	s.record(ctx, models.EventLogin, "user logged in: "+user.Username, user.ID)
	return user, nil
}

// UpdateUser updates a user's non-sensitive information. The username is
// immutable. A request with no fields set only returns the current user.
func (s *UserService) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (models.User, error) {
	set := map[string]any{}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if len(set) == 0 {
		return s.GetUserByID(ctx, id)
	}
	set["updated"] = s.now().UTC()

	err := s.store.UpdateOne(ctx, auth.UsersCollection, byID(id), store.Update{Set: set})
	if err != nil {
		return models.User{}, fmt.Errorf("update user %s: %w", id, err)
	}
	return s.GetUserByID(ctx, id)
}

// UpdatePassword sets a new salt and hash and clears the session token, so
// every existing session ends.
func (s *UserService) UpdatePassword(ctx context.Context, id, newPassword string) error {
	salt := s.generator.Salt()
	err := s.store.UpdateOne(ctx, auth.UsersCollection, byID(id), store.Update{
		Set: map[string]any{
			"salt":          salt,
			"password_hash": security.Hash(salt, newPassword),
			"updated":       s.now().UTC(),
		},
		Unset: []string{"auth_token"},
	})
	if err != nil {
		return fmt.Errorf("update password for %s: %w", id, err)
	}

	if _, err := s.GetUserByID(ctx, id); err != nil {
		return err
	}
	s.record(ctx, models.EventPasswordChanged, "password changed", id)
	return nil
}

func (s *UserService) record(ctx context.Context, eventType, message, userID string) {
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(ctx, eventType, "info", message, userID); err != nil {
		log.Error().Err(err).Str("event", eventType).Str("user_id", userID).Msg("Failed to record event")
	}
}
