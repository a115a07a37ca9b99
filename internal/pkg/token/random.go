package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NewRandomToken returns a URL-safe token carrying 32 bytes of entropy,
// suitable for verification and password-reset links.
func NewRandomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
