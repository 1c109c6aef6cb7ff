package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("post", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("username", "username is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("username already exists"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "IncorrectUsername wraps its own sentinel",
			err:       IncorrectUsername(),
			target:    ErrIncorrectUsername,
			wantMatch: true,
		},
		{
			name:      "IncorrectUsername also matches the generic credential error",
			err:       IncorrectUsername(),
			target:    ErrBadCredentials,
			wantMatch: true,
		},
		{
			name:      "IncorrectPassword also matches the generic credential error",
			err:       IncorrectPassword(),
			target:    ErrBadCredentials,
			wantMatch: true,
		},
		{
			name:      "IncorrectUsername does NOT match IncorrectPassword",
			err:       IncorrectUsername(),
			target:    ErrIncorrectPassword,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("post", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.wantMatch {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantMatch)
			}
		})
	}
}

func TestErrorsIsThroughWrapping(t *testing.T) {
	// Services wrap domain errors with context; errors.Is must still match
	// through the chain.
	wrapped := fmt.Errorf("verifying credentials: %w", IncorrectPassword())

	if !errors.Is(wrapped, ErrIncorrectPassword) {
		t.Error("wrapped error should match ErrIncorrectPassword")
	}
	if !errors.Is(wrapped, ErrBadCredentials) {
		t.Error("wrapped error should match ErrBadCredentials")
	}
}

func TestCredentialMessagesAreIdentical(t *testing.T) {
	// The rendered message must not reveal which part of the credentials was
	// wrong.
	if IncorrectUsername().Error() != IncorrectPassword().Error() {
		t.Errorf("credential failure messages differ: %q vs %q",
			IncorrectUsername().Error(), IncorrectPassword().Error())
	}
}

func TestAppErrorFields(t *testing.T) {
	err := ValidationFailed("password", "Password must be at least 6 characters long")

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As() failed to extract *AppError")
	}
	if appErr.Field != "password" {
		t.Errorf("Field = %q, want %q", appErr.Field, "password")
	}
	if appErr.Message != "Password must be at least 6 characters long" {
		t.Errorf("Message = %q", appErr.Message)
	}
}
