package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the name of the session cookie.
const CookieName = "auth_token"

const bearerPrefix = "Bearer "

// sessionClaims wraps a session token when cookies are signed.
type sessionClaims struct {
	Token string `json:"tok"`
	jwt.RegisteredClaims
}

// Cookies moves session tokens in and out of HTTP requests. With a secret,
// the cookie value is an HS256-signed JWT carrying the token, so a client
// cannot alter it without the server noticing. Without one the raw token
// is stored.
type Cookies struct {
	secret []byte
	secure bool
}

// NewCookies creates a Cookies. An empty secret disables signing. secure
// should only be false for plain-http local development.
func NewCookies(secret string, secure bool) *Cookies {
	c := &Cookies{secure: secure}
	if secret != "" {
		c.secret = []byte(secret)
	}
	return c
}

// Signed reports whether cookie values are signed.
func (c *Cookies) Signed() bool { return c.secret != nil }

// Session returns the cookie that hands token to the client.
func (c *Cookies) Session(token string) (*http.Cookie, error) {
	value := token
	if c.secret != nil {
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{Token: token}).SignedString(c.secret)
		if err != nil {
			return nil, fmt.Errorf("sign session cookie: %w", err)
		}
		value = signed
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}, nil
}

// Expired returns a cookie that removes the session cookie from the client.
func (c *Cookies) Expired() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// TokenFromRequest extracts the session token from r. A bearer token in the
// Authorization header takes precedence over the cookie. It returns an empty
// string when neither is present, and ErrBadToken when a signed cookie fails
// verification.
func (c *Cookies) TokenFromRequest(r *http.Request) (string, error) {
	for _, v := range r.Header.Values(AuthorizationHeader) {
		if strings.HasPrefix(v, bearerPrefix) {
			return strings.TrimPrefix(v, bearerPrefix), nil
		}
	}

	cookie, err := r.Cookie(CookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	if err != nil {
		return "", unspecified(fmt.Errorf("read session cookie: %w", err))
	}
	if c.secret == nil || cookie.Value == "" {
		return cookie.Value, nil
	}
	return c.open(cookie.Value)
}

func (c *Cookies) open(value string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Token == "" {
		return "", ErrBadToken
	}
	return claims.Token, nil
}
