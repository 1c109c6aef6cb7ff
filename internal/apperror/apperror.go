// Package apperror defines the application's error taxonomy.
//
// Services return these domain errors; the HTTP layer maps them to pages and
// redirects. Sentinels are matched with errors.Is, and AppError carries the
// human-readable message (plus the offending field for validation errors).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrBadCredentials is the generic credential failure reported to users.
	// The two specific causes below wrap it: code can distinguish an unknown
	// username from a wrong password (for logs and tests) while the rendered
	// message stays the same for both, so usernames can't be enumerated.
	ErrBadCredentials    = errors.New("invalid credentials")
	ErrIncorrectUsername = fmt.Errorf("%w: unknown username", ErrBadCredentials)
	ErrIncorrectPassword = fmt.Errorf("%w: wrong password", ErrBadCredentials)

	// ErrEmptyPost signals a create where title and content are both blank
	// after trimming. It is a deliberate silent no-op, not a validation
	// failure: the handler redirects without rendering an error.
	ErrEmptyPost = errors.New("empty post")
)

type AppError struct {
	Err     error  // sentinel this error wraps
	Message string // human-readable error message
	Field   string // optional: field causing the error
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

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// IncorrectUsername reports a login attempt for a username that does not
// exist. The message is the generic one — only the wrapped sentinel differs
// from IncorrectPassword.
func IncorrectUsername() *AppError {
	return &AppError{
		Err:     ErrIncorrectUsername,
		Message: "Invalid username or password",
	}
}

// IncorrectPassword reports a login attempt with the wrong password for an
// existing username.
func IncorrectPassword() *AppError {
	return &AppError{
		Err:     ErrIncorrectPassword,
		Message: "Invalid username or password",
	}
}
