package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
)

// SessionDB implements repository.SessionRepository.
type SessionDB struct {
	conn *sql.DB
}

var _ repository.SessionRepository = (*SessionDB)(nil)

// Create inserts a session row. The caller supplies the ID (it is embedded
// in the client token) and the expiry; CreatedAt is set here.
func (s *SessionDB) Create(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		session.ID,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting session: %w", err)
	}

	return nil
}

// GetByID retrieves a session row by its token ID.
func (s *SessionDB) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(
		&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}

	return &session, nil
}

// Delete removes a session row. Deleting a row that is already gone is not
// an error — logout must succeed exactly once per token, and replays are
// harmless.
func (s *SessionDB) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry and reports how many.
func (s *SessionDB) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
