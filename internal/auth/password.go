// Package auth provides the credential and session primitives: bcrypt
// password hashing, the signed session-reference token, the per-request
// session resolver, and the optional GitHub OAuth provider.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell-blog/inkwell/internal/apperror"
)

// defaultCost is the bcrypt work factor. 12 takes roughly 250ms on current
// server hardware; tune it so hashing stays in the 200–300ms range.
const defaultCost = 12

// PasswordService provides bcrypt hashing and verification.
//
// The cost lives on a struct so tests can inject the bcrypt minimum (4)
// instead of paying 250ms per hash.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom (low)
// cost. Test use only.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes a plaintext password with bcrypt. The output embeds salt and
// cost and is stored directly as the user's password_hash.
//
// Passwords over 72 bytes are rejected rather than silently truncated
// (a bcrypt limit).
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks a plaintext password against a stored hash.
//
// bcrypt's comparison is constant-time, so response timing doesn't reveal
// how much of the password was right. A mismatch (or an empty hash, which is
// what OAuth-only accounts carry) comes back as apperror.ErrIncorrectPassword.
func (p *PasswordService) Verify(hash, plaintext string) error {
	if hash == "" {
		return apperror.IncorrectPassword()
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return apperror.IncorrectPassword()
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
