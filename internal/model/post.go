package model

import "time"

// Post represents a blog post owned by exactly one user.
//
// Content is the raw rich-text HTML exactly as submitted; sanitization
// happens at render time only, never before storage. CreatedAt is set once,
// in UTC, and is immutable. UserID is the owning user — every read, update,
// and delete of a post is filtered by (id AND user_id) in a single store
// call, so a post belonging to someone else is indistinguishable from one
// that does not exist.
//
// PreviewImage is derived, not persisted: the src of the first <img> tag
// found in Content by a plain string scan, or "" if there is none.
type Post struct {
	ID           string    `json:"id"                     db:"id"`
	Title        string    `json:"title"                  db:"title"`
	Content      string    `json:"content"                db:"content"`
	CreatedAt    time.Time `json:"createdAt"              db:"created_at"`
	UserID       string    `json:"userId"                 db:"user_id"`
	PreviewImage string    `json:"previewImage,omitempty" db:"-"`
}
