package model

import "time"

// Session is the server-side half of a login session.
//
// The client holds a signed token whose ID claim points at one of these
// rows; the row stores only the user's key, never the user record or any
// secret material. Logout deletes the row, which invalidates every copy of
// the token immediately — the signature alone is not enough to resolve an
// identity.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// Expired reports whether the session has passed its expiry time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
