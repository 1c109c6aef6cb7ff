package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/model"
)

func createTestSession(t *testing.T, db *DB, id, userID string, expiresAt time.Time) *model.Session {
	t.Helper()
	session := &model.Session{ID: id, UserID: userID, ExpiresAt: expiresAt}
	if err := db.Sessions().Create(context.Background(), session); err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return session
}

func TestSessionCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	expiresAt := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	createTestSession(t, db, "sess-1", alice.ID, expiresAt)

	got, err := db.Sessions().GetByID(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.UserID != alice.ID {
		t.Errorf("UserID = %q, want %q", got.UserID, alice.ID)
	}
	if !got.ExpiresAt.Equal(expiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expiresAt)
	}
}

func TestSessionGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Sessions().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() for missing session = %v, want ErrNotFound", err)
	}
}

func TestSessionDelete(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	createTestSession(t, db, "sess-1", alice.ID, time.Now().UTC().Add(time.Hour))

	ctx := context.Background()

	if err := db.Sessions().Delete(ctx, "sess-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err := db.Sessions().GetByID(ctx, "sess-1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete = %v, want ErrNotFound", err)
	}

	// Deleting an already-deleted session is a no-op, not an error.
	if err := db.Sessions().Delete(ctx, "sess-1"); err != nil {
		t.Errorf("repeated Delete() error = %v, want nil", err)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")

	now := time.Now().UTC()
	createTestSession(t, db, "live", alice.ID, now.Add(time.Hour))
	createTestSession(t, db, "dead-1", alice.ID, now.Add(-time.Hour))
	createTestSession(t, db, "dead-2", alice.ID, now.Add(-time.Minute))

	ctx := context.Background()

	n, err := db.Sessions().DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteExpired() removed %d rows, want 2", n)
	}

	if _, err := db.Sessions().GetByID(ctx, "live"); err != nil {
		t.Errorf("live session should survive the sweep: %v", err)
	}
	_, err = db.Sessions().GetByID(ctx, "dead-1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expired session should be gone after the sweep, got %v", err)
	}
}
