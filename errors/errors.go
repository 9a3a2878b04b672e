package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized covers every missing, malformed or expired token uniformly.
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// ErrForbidden means the caller is authenticated but is not the message sender.
	ErrForbidden = fmt.Errorf("forbidden")

	// ErrNotFound is returned both when an entity is absent and when the caller
	// lacks access to it, so existence is never leaked.
	ErrNotFound = fmt.Errorf("not found")

	ErrConflict      = fmt.Errorf("conflict")
	ErrUsernameTaken = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", ErrConflict)

	ErrInvalidOperation = fmt.Errorf("invalid operation")

	ErrPayloadTooLarge      = fmt.Errorf("payload too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	ErrInvalidPassword = fmt.Errorf("password does not meet requirements")
	ErrTokenGeneration = fmt.Errorf("token generation failed")
)

// HTTPStatus maps a domain error to the status code exposed by the API surface.
// Every handler goes through this single mapping so the taxonomy stays coherent.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidOperation), errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
