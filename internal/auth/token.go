package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Cookie names for the two session realms. Both travel as plain cookies;
// only the verification pipelines tell them apart.
const (
	CookieStaffSession    = "staff_session"
	CookieCustomerSession = "customer_session"
)

// NewSessionToken generates an opaque random session token.
func NewSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken generates the SHA-256 hash of a token. Only hashes are used as
// storage keys so a store dump never leaks usable credentials.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
