package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
)

// UserDB implements repository.UserRepository.
type UserDB struct {
	conn *sql.DB
}

var _ repository.UserRepository = (*UserDB)(nil)

// Create inserts a new user. The ID and CreatedAt are generated here and
// written back into the caller's struct. A username or github_id collision
// comes back as apperror.ErrConflict — the table's UNIQUE constraints are
// the single point where uniqueness is enforced.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, github_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.GitHubID,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("username already exists")
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.getOne(ctx,
		`SELECT id, username, password_hash, github_id, created_at
		 FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by exact username match.
func (u *UserDB) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return u.getOne(ctx,
		`SELECT id, username, password_hash, github_id, created_at
		 FROM users WHERE username = ?`, username)
}

// GetByGitHubID retrieves a user by their linked GitHub account ID.
func (u *UserDB) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return u.getOne(ctx,
		`SELECT id, username, password_hash, github_id, created_at
		 FROM users WHERE github_id = ?`, githubID)
}

func (u *UserDB) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var usr model.User

	err := u.conn.QueryRowContext(ctx, query, arg).Scan(
		&usr.ID,
		&usr.Username,
		&usr.PasswordHash,
		&usr.GitHubID,
		&usr.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &usr, nil
}
