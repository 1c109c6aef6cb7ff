// Package repository declares the storage interfaces the services depend on.
//
// Two interchangeable backends implement them: sqlite (embedded, the default)
// and postgres. Identifiers are opaque strings everywhere so the core never
// assumes a backend's key format.
package repository

import (
	"context"

	"github.com/inkwell-blog/inkwell/internal/model"
)

// UserRepository stores registered accounts.
//
// Create returns an error matching apperror.ErrConflict when the username
// (or linked GitHub ID) is already taken; the lookups return an error
// matching apperror.ErrNotFound on a miss.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
}

// PostRepository stores posts. Every accessor that touches an existing post
// takes the owner's user ID and applies it together with the post ID as one
// combined predicate in a single query — ownership is never checked as a
// separate step.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	// ListByUser returns the user's posts, newest first. A non-empty search
	// filters to posts whose title or content contains it, case-insensitively.
	ListByUser(ctx context.Context, userID, search string) ([]model.Post, error)
	GetOwned(ctx context.Context, id, userID string) (*model.Post, error)
	UpdateOwned(ctx context.Context, post *model.Post) error
	// DeleteOwned reports how many rows were removed; zero is not an error.
	DeleteOwned(ctx context.Context, id, userID string) (int64, error)
}

// SessionRepository stores login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Store bundles the three repositories a backend provides, plus lifecycle.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Sessions() SessionRepository
	Close() error
}
