package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an authentication failure.
type Kind int

const (
	// KindUnspecified is reserved for failures of the authentication
	// machinery itself rather than of the presented credentials.
	KindUnspecified Kind = iota
	KindMissingAuth
	KindMissingToken
	KindBadHeaderCount
	KindNoUser
	KindWrongPassword
	KindBadToken
	KindDB
)

func (k Kind) String() string {
	switch k {
	case KindMissingAuth:
		return "missing_auth"
	case KindMissingToken:
		return "missing_token"
	case KindBadHeaderCount:
		return "bad_header_count"
	case KindNoUser:
		return "no_user"
	case KindWrongPassword:
		return "wrong_password"
	case KindBadToken:
		return "bad_token"
	case KindDB:
		return "db_error"
	default:
		return "unspecified"
	}
}

// Status is the HTTP status the boundary answers with for this kind.
// NoUser and WrongPassword are indistinguishable to clients.
func (k Kind) Status() int {
	switch k {
	case KindMissingAuth, KindMissingToken, KindNoUser, KindWrongPassword, KindBadToken:
		return http.StatusUnauthorized
	case KindBadHeaderCount:
		return http.StatusBadRequest
	case KindDB:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is an authentication failure. Username is set for NoUser and
// WrongPassword, Err for DB and Unspecified. Secrets are never recorded.
type Error struct {
	Kind     Kind
	Username string
	Err      error
}

// Sentinels for errors.Is; matching compares kinds only.
var (
	ErrMissingAuth    = &Error{Kind: KindMissingAuth}
	ErrMissingToken   = &Error{Kind: KindMissingToken}
	ErrBadHeaderCount = &Error{Kind: KindBadHeaderCount}
	ErrNoUser         = &Error{Kind: KindNoUser}
	ErrWrongPassword  = &Error{Kind: KindWrongPassword}
	ErrBadToken       = &Error{Kind: KindBadToken}
	ErrDB             = &Error{Kind: KindDB}
	ErrUnspecified    = &Error{Kind: KindUnspecified}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingAuth:
		return "no auth header was provided in the request"
	case KindMissingToken:
		return "no auth_token cookie was provided in the request"
	case KindBadHeaderCount:
		return "multiple Authorization headers were found in the request"
	case KindNoUser:
		return fmt.Sprintf("no user was found: %s", e.Username)
	case KindWrongPassword:
		return fmt.Sprintf("an incorrect password was used for user: %s", e.Username)
	case KindBadToken:
		return "an invalid token was provided in the request"
	case KindDB:
		return fmt.Sprintf("an issue occurred with the db: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("authentication failed: %v", e.Err)
		}
		return "authentication failed"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Status is the HTTP status for the error's kind.
func (e *Error) Status() int { return e.Kind.Status() }

// StatusOf returns the HTTP status for err, or 500 when err is not an auth error.
func StatusOf(err error) int {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Status()
	}
	return http.StatusInternalServerError
}

// fromStoreError maps every store failure, whatever its kind, to KindDB.
func fromStoreError(err error) *Error {
	return &Error{Kind: KindDB, Err: err}
}

func unspecified(err error) *Error {
	return &Error{Kind: KindUnspecified, Err: err}
}
