package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind tags a domain error so the HTTP boundary can translate it exactly
// once. Services return AppErrors; controllers never pick status codes.
type Kind int

const (
	KindAlreadyExists Kind = iota
	KindInvalidCredentials
	KindUnauthorized
	KindAccessDenied
	KindNotFound
	KindInvalidToken
	KindInternal
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindAlreadyExists, KindInvalidToken:
		return fiber.StatusBadRequest
	case KindInvalidCredentials, KindUnauthorized:
		return fiber.StatusUnauthorized
	case KindAccessDenied:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func AlreadyExists(message string) *AppError {
	return &AppError{Kind: KindAlreadyExists, Message: message}
}

func InvalidCredentials(message string) *AppError {
	return &AppError{Kind: KindInvalidCredentials, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: message}
}

func AccessDenied(message string) *AppError {
	return &AppError{Kind: KindAccessDenied, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Message: message}
}

func InvalidToken(message string) *AppError {
	return &AppError{Kind: KindInvalidToken, Message: message}
}

// Internal wraps an unexpected error without leaking its detail to clients.
func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// As extracts an *AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
