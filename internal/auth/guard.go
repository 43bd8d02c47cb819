package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/isdelr/account-service/internal/api/respond"
	"github.com/isdelr/account-service/internal/models"
	"github.com/rs/zerolog/log"
)

// AuthedHandlerFunc is a handler that runs only after authentication
// succeeded, receiving the resolved user.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, user models.User)

// FailureRecorder is notified of every rejected request.
type FailureRecorder interface {
	AuthFailed(ctx context.Context, kind, username string)
}

// Guard runs an authenticator ahead of a handler. On failure it answers
// with the status mapped from the error kind and a generic JSON body.
type Guard struct {
	credentials *CredentialAuthenticator
	tokens      *TokenAuthenticator
	cookies     *Cookies
	recorder    FailureRecorder
}

// NewGuard creates a Guard. recorder may be nil.
func NewGuard(credentials *CredentialAuthenticator, tokens *TokenAuthenticator, cookies *Cookies, recorder FailureRecorder) *Guard {
	return &Guard{credentials: credentials, tokens: tokens, cookies: cookies, recorder: recorder}
}

// WithCredentials authenticates by the username:password Authorization header.
func (g *Guard) WithCredentials(next AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := g.credentials.AuthenticateRequest(r)
		if err != nil {
			g.reject(w, r, err)
			return
		}
		next(w, r, user)
	}
}

// WithToken authenticates by session token, taken from a bearer
// Authorization header or the session cookie.
func (g *Guard) WithToken(next AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := g.authenticateToken(r)
		if err != nil {
			g.reject(w, r, err)
			return
		}
		next(w, r, user)
	}
}

func (g *Guard) authenticateToken(r *http.Request) (models.User, error) {
	token, err := g.cookies.TokenFromRequest(r)
	if err != nil {
		return models.User{}, err
	}
	return g.tokens.Authenticate(r.Context(), token)
}

func (g *Guard) reject(w http.ResponseWriter, r *http.Request, err error) {
	var aerr *Error
	if !errors.As(err, &aerr) {
		aerr = unspecified(err)
	}

	switch aerr.Kind {
	case KindDB, KindUnspecified:
		log.Error().Err(aerr).Str("kind", aerr.Kind.String()).Str("path", r.URL.Path).Msg("Authentication could not be performed")
	default:
		log.Warn().Str("kind", aerr.Kind.String()).Str("username", aerr.Username).Str("path", r.URL.Path).Msg("Failed authentication attempt")
	}

	if g.recorder != nil {
		g.recorder.AuthFailed(r.Context(), aerr.Kind.String(), aerr.Username)
	}
	respond.Error(w, aerr.Status())
}
