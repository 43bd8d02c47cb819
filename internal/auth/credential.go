package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/isdelr/account-service/internal/models"
	"github.com/isdelr/account-service/internal/security"
	"github.com/isdelr/account-service/internal/store"
)

// UsersCollection is the collection holding one document per user.
const UsersCollection = "users"

// AuthorizationHeader carries "username:password" on the credential path
// and "Bearer <token>" on the token path.
const AuthorizationHeader = "Authorization"

// Credential is a username and cleartext password parsed from a request.
type Credential struct {
	Username string
	Password string
}

// ParseCredential splits an Authorization header value of the form
// username:password on its first colon. The password may contain colons.
func ParseCredential(value string) (Credential, error) {
	username, password, ok := strings.Cut(value, ":")
	if !ok {
		return Credential{}, ErrMissingAuth
	}
	return Credential{Username: username, Password: password}, nil
}

// CredentialAuthenticator verifies a username and password against the
// stored salt and hash. It does not issue session tokens.
type CredentialAuthenticator struct {
	store store.Store
}

// NewCredentialAuthenticator creates a CredentialAuthenticator.
func NewCredentialAuthenticator(s store.Store) *CredentialAuthenticator {
	return &CredentialAuthenticator{store: s}
}

// AuthenticateRequest authenticates r by its Authorization headers.
func (a *CredentialAuthenticator) AuthenticateRequest(r *http.Request) (models.User, error) {
	return a.AuthenticateHeaders(r.Context(), r.Header.Values(AuthorizationHeader))
}

// AuthenticateHeaders authenticates the values of every Authorization header
// on a request. Exactly one must be present.
func (a *CredentialAuthenticator) AuthenticateHeaders(ctx context.Context, values []string) (models.User, error) {
	switch len(values) {
	case 0:
		return models.User{}, ErrMissingAuth
	case 1:
	default:
		return models.User{}, ErrBadHeaderCount
	}

	cred, err := ParseCredential(values[0])
	if err != nil {
		return models.User{}, err
	}
	return a.Authenticate(ctx, cred)
}

// Authenticate looks up cred.Username and checks cred.Password against it.
func (a *CredentialAuthenticator) Authenticate(ctx context.Context, cred Credential) (models.User, error) {
	var user models.User
	found, err := a.store.FindOne(ctx, UsersCollection, store.Filter{"username": cred.Username}, &user)
	if err != nil {
		return models.User{}, fromStoreError(err)
	}
	if !found {
		return models.User{}, &Error{Kind: KindNoUser, Username: cred.Username}
	}

	if !security.Verify(user.Salt, cred.Password, user.PasswordHash) {
		return models.User{}, &Error{Kind: KindWrongPassword, Username: cred.Username}
	}
	return user, nil
}
