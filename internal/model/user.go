// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Username is unique (enforced by the store) and compared exactly as stored.
// PasswordHash holds the bcrypt hash of the user's password; the `json:"-"`
// tag keeps it out of every serialized response, and nothing in the app may
// log it. Accounts created through GitHub OAuth have an empty hash and a
// non-nil GitHubID instead — they can only sign in via GitHub.
//
// A User record is immutable after registration: there is no update or
// delete path in the application.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	GitHubID     *int64    `json:"-"         db:"github_id"` // set only for OAuth-linked accounts
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
