// Package auth holds the admin credential checks: the Verifier consulted by
// the admin route gate, the Issuer used by login, and password hashing.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// Verifier decides whether an Authorization header value admits the caller
// to the admin routes.
type Verifier interface {
	Verify(header string) bool
}

// Issuer hands out the credential an authenticated admin presents on later
// requests.
type Issuer interface {
	Issue(username string) (string, error)
}

// StaticToken is a single shared admin secret. It admits exactly the header
// "Bearer <token>" and issues the same token to every admin.
type StaticToken struct {
	token string
}

// NewStaticToken panics on an empty token: an empty secret would admit
// the header "Bearer ".
func NewStaticToken(token string) StaticToken {
	if strings.TrimSpace(token) == "" {
		panic("auth: empty admin token")
	}
	return StaticToken{token: token}
}

// Verify implements Verifier.
func (s StaticToken) Verify(header string) bool {
	want := BearerPrefix + s.token
	return subtle.ConstantTimeCompare([]byte(header), []byte(want)) == 1
}

// Issue implements Issuer.
func (s StaticToken) Issue(string) (string, error) {
	return s.token, nil
}

// HashPassword returns the bcrypt hash stored in place of the password.
// Passwords of any length are accepted.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored hash.
// Malformed hashes never match.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password)) == nil
}

// prehash fits any password into bcrypt's 72-byte input limit: the
// base64 of a SHA-256 digest is 44 bytes.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
