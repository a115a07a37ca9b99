package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRandomToken(t *testing.T) {
	token, err := NewRandomToken()
	assert.NoError(t, err)

	// 32 bytes base64url without padding is 43 characters.
	assert.Len(t, token, 43)
	assert.False(t, strings.ContainsAny(token, "+/="), "token must be URL-safe: %s", token)
}

func TestNewRandomTokenUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewRandomToken()
		assert.NoError(t, err)
		assert.False(t, seen[token], "duplicate token generated")
		seen[token] = true
	}
}
