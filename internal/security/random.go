package security

import "math/rand/v2"

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Default lengths for salts and session tokens.
const (
	DefaultSaltLength  = 64
	DefaultTokenLength = 256
)

// RandomString returns length characters drawn uniformly from [A-Za-z0-9].
// Uniqueness is not checked; callers rely on the length to make collisions negligible.
func RandomString(length int) string {
	if length <= 0 {
		return ""
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumeric[rand.IntN(len(alphanumeric))]
	}
	return string(b)
}

// Generator produces salts and session tokens of configured lengths.
type Generator struct {
	SaltLength  int
	TokenLength int
}

// NewGenerator returns a Generator, substituting defaults for non-positive lengths.
func NewGenerator(saltLength, tokenLength int) Generator {
	if saltLength <= 0 {
		saltLength = DefaultSaltLength
	}
	if tokenLength <= 0 {
		tokenLength = DefaultTokenLength
	}
	return Generator{SaltLength: saltLength, TokenLength: tokenLength}
}

// Salt returns a fresh per-user salt.
func (g Generator) Salt() string { return RandomString(g.SaltLength) }

// Token returns a fresh session token.
func (g Generator) Token() string { return RandomString(g.TokenLength) }
