package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrInvalidInput = errors.New("invalid input")
	ErrBlocked      = errors.New("blocked by upstream")
	ErrTimeout      = errors.New("timeout")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Unauthorized returns an AppError for bad credentials or bad tokens.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// RateLimited returns an AppError indicating an upstream API quota is
// exhausted. HTTP handlers map this to 429 so clients can back off instead
// of seeing a generic 500.
func RateLimited(upstream string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: fmt.Sprintf("%s API rate limit exceeded", upstream),
	}
}

// InvalidInput returns an AppError for a malformed external identifier,
// e.g. a URL that is not a LinkedIn public-profile URL.
func InvalidInput(field, message string) *AppError {
	return &AppError{
		Err:     ErrInvalidInput,
		Message: message,
		Field:   field,
	}
}

// Blocked returns an AppError indicating an upstream anti-bot system
// rejected the request. HTTP handlers map this to 403.
func Blocked(message string) *AppError {
	return &AppError{
		Err:     ErrBlocked,
		Message: message,
	}
}

// Timeout returns an AppError for an upstream request that timed out.
// HTTP handlers map this to 504 Gateway Timeout.
func Timeout(message string) *AppError {
	return &AppError{
		Err:     ErrTimeout,
		Message: message,
	}
}
