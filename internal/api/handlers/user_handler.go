package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/account-service/internal/api/respond"
	"github.com/isdelr/account-service/internal/auth"
	"github.com/isdelr/account-service/internal/models"
	"github.com/isdelr/account-service/internal/services"
	"github.com/isdelr/account-service/internal/store"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for account management.
type UserHandler struct {
	service services.UserServiceProvider
	cookies *auth.Cookies
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, cookies *auth.Cookies) *UserHandler {
	return &UserHandler{service: service, cookies: cookies}
}

// storeStatus maps a store failure to a response status: an unreachable
// backend is 503, anything else 500.
func storeStatus(err error) int {
	if errors.Is(err, store.ErrBackend) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// public renders user for a response body. With signed cookies the session
// token stays out of the body, so only the cookie can carry it.
func (h *UserHandler) public(user models.User) models.PublicUser {
	p := user.Public()
	if h.cookies.Signed() {
		p.AuthToken = ""
	}
	return p
}

// Signup handles new user registration.
//
//	POST /signup {"username": "foo", "email": "foo@example.com", "password": "password1234"}
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest)
		return
	}

	user, err := h.service.CreateUser(r.Context(), payload)
	if errors.Is(err, services.ErrUsernameTaken) {
		log.Info().Str("username", payload.Username).Msg("Signup with existing username")
		respond.Error(w, http.StatusPreconditionFailed)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		respond.Error(w, http.StatusInternalServerError)
		return
	}

	respond.JSON(w, http.StatusOK, h.public(user))
}

// Login issues a new session token for a user already authenticated by
// credentials and hands it out as the session cookie.
//
//	POST /login  Authorization: username:password
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, user models.User) {
	session, err := h.service.StartSession(r.Context(), user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to start session")
		respond.Error(w, storeStatus(err))
		return
	}

	cookie, err := h.cookies.Session(session.AuthToken)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to build session cookie")
		respond.Error(w, http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, cookie)

	respond.JSON(w, http.StatusOK, h.public(session))
}

// Self returns the user resolved from the session token.
//
//	GET /self
func (h *UserHandler) Self(w http.ResponseWriter, r *http.Request, user models.User) {
	respond.JSON(w, http.StatusOK, h.public(user))
}

// UpdateSelf updates the profile of the user resolved from the session token.
//
//	PATCH /self {"email": "new@example.com"}
func (h *UserHandler) UpdateSelf(w http.ResponseWriter, r *http.Request, user models.User) {
	var payload models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), user.ID, payload)
	if errors.Is(err, services.ErrUserNotFound) {
		respond.Error(w, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to update user")
		respond.Error(w, storeStatus(err))
		return
	}

	respond.JSON(w, http.StatusOK, h.public(updated))
}

// ChangePassword replaces the password of a user authenticated by
// credentials. The session cookie is removed since the stored token is cleared.
//
//	PATCH /self/password  Authorization: username:password  {"password": "..."}
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request, user models.User) {
	var payload models.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest)
		return
	}

	err := h.service.UpdatePassword(r.Context(), user.ID, payload.Password)
	if errors.Is(err, services.ErrUserNotFound) {
		respond.Error(w, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to change password")
		respond.Error(w, storeStatus(err))
		return
	}

	http.SetCookie(w, h.cookies.Expired())
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}
