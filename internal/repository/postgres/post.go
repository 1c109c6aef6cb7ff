package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
)

// PostDB implements repository.PostRepository. Same contract as the sqlite
// backend: (id AND user_id) as one predicate in one statement, ILIKE for the
// case-insensitive search.
type PostDB struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostDB)(nil)

// Create inserts a new post.
func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now().UTC()

	_, err := p.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, created_at, user_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.UserID,
	)
	if err != nil {
		return fmt.Errorf("postgres: inserting post: %w", err)
	}

	return nil
}

// ListByUser returns the user's posts, newest first, optionally filtered by
// a case-insensitive substring search over title and content.
func (p *PostDB) ListByUser(ctx context.Context, userID, search string) ([]model.Post, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if search != "" {
		term := "%" + search + "%"
		rows, err = p.conn.QueryContext(ctx,
			`SELECT id, title, content, created_at, user_id
			 FROM posts
			 WHERE user_id = $1 AND (title ILIKE $2 OR content ILIKE $2)
			 ORDER BY created_at DESC`,
			userID, term,
		)
	} else {
		rows, err = p.conn.QueryContext(ctx,
			`SELECT id, title, content, created_at, user_id
			 FROM posts
			 WHERE user_id = $1
			 ORDER BY created_at DESC`,
			userID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Content, &post.CreatedAt, &post.UserID,
		); err != nil {
			return nil, fmt.Errorf("postgres: scanning post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterating posts: %w", err)
	}

	return posts, nil
}

// GetOwned retrieves a post by (id, owner) in a single query.
func (p *PostDB) GetOwned(ctx context.Context, id, userID string) (*model.Post, error) {
	var post model.Post

	err := p.conn.QueryRowContext(ctx,
		`SELECT id, title, content, created_at, user_id
		 FROM posts
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(
		&post.ID, &post.Title, &post.Content, &post.CreatedAt, &post.UserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("postgres: getting post %s: %w", id, err)
	}

	return &post, nil
}

// UpdateOwned replaces title and content for (post.ID, post.UserID).
func (p *PostDB) UpdateOwned(ctx context.Context, post *model.Post) error {
	result, err := p.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title = $1, content = $2
		 WHERE id = $3 AND user_id = $4`,
		post.Title,
		post.Content,
		post.ID,
		post.UserID,
	)
	if err != nil {
		return fmt.Errorf("postgres: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// DeleteOwned removes (id, userID) and reports the row count; zero rows is
// a valid, idempotent outcome.
func (p *PostDB) DeleteOwned(ctx context.Context, id, userID string) (int64, error) {
	result, err := p.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("postgres: checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
