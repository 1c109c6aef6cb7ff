package postgres

import (
	"context"
	"database/sql"
	"errors"
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

// Create inserts a session row.
func (s *SessionDB) Create(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		session.ID,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting session: %w", err)
	}

	return nil
}

// GetByID retrieves a session row by its token ID.
func (s *SessionDB) GetByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(
		&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("session", id)
		}
		return nil, fmt.Errorf("postgres: getting session: %w", err)
	}

	return &session, nil
}

// Delete removes a session row; removing an absent row is not an error.
func (s *SessionDB) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE id = $1`, id,
	); err != nil {
		return fmt.Errorf("postgres: deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (s *SessionDB) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: deleting expired sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres: checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
