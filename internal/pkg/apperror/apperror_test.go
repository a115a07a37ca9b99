package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"already exists", AlreadyExists("taken"), fiber.StatusBadRequest},
		{"invalid token", InvalidToken("expired"), fiber.StatusBadRequest},
		{"invalid credentials", InvalidCredentials("bad login"), fiber.StatusUnauthorized},
		{"unauthorized", Unauthorized("no token"), fiber.StatusUnauthorized},
		{"access denied", AccessDenied("not yours"), fiber.StatusForbidden},
		{"not found", NotFound("gone"), fiber.StatusNotFound},
		{"internal", Internal(errors.New("boom")), fiber.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.Status())
		})
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal(cause)

	assert.Equal(t, "internal server error", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestAsThroughWrapping(t *testing.T) {
	original := NotFound("thread not found")
	wrapped := fmt.Errorf("handling request: %w", original)

	appErr, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, appErr.Kind)
	assert.Equal(t, "thread not found", appErr.Message)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}
