// Package security holds the password hashing and random string helpers
// shared by signup, login and password changes.
package security

import (
	"encoding/base64"

	"golang.org/x/crypto/sha3"
)

// Hash returns the base64 encoded SHA3-512 digest of salt followed by password.
// The same function is used to store and to verify passwords.
func Hash(salt, password string) string {
	h := sha3.New512()
	h.Write([]byte(salt))
	h.Write([]byte(password))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Verify recomputes the hash of password with salt and compares it to stored.
// The comparison is plain string equality.
func Verify(salt, password, stored string) bool {
	return Hash(salt, password) == stored
}
