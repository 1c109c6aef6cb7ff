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

// PostDB implements repository.PostRepository.
//
// Ownership is part of every WHERE clause that touches an existing row:
// `id = ? AND user_id = ?` runs as one statement, so there is no window
// between an existence check and the actual read/write, and a post owned by
// someone else produces exactly the same result as a missing one.
type PostDB struct {
	conn *sql.DB
}

var _ repository.PostRepository = (*PostDB)(nil)

// Create inserts a new post. ID and CreatedAt (UTC) are generated here and
// written back into the caller's struct.
func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	post.ID = xid.New().String()
	post.CreatedAt = time.Now().UTC()

	_, err := p.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, created_at, user_id)
		 VALUES (?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Content,
		post.CreatedAt,
		post.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	return nil
}

// ListByUser returns the user's posts, newest first. A non-empty search
// narrows to posts whose title or content contains it; SQLite's LIKE is
// case-insensitive for ASCII, which matches how the search box behaves.
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
			 WHERE user_id = ? AND (title LIKE ? OR content LIKE ?)
			 ORDER BY created_at DESC`,
			userID, term, term,
		)
	} else {
		rows, err = p.conn.QueryContext(ctx,
			`SELECT id, title, content, created_at, user_id
			 FROM posts
			 WHERE user_id = ?
			 ORDER BY created_at DESC`,
			userID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(
			&post.ID, &post.Title, &post.Content, &post.CreatedAt, &post.UserID,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// GetOwned retrieves a post by (id, owner) in a single query.
func (p *PostDB) GetOwned(ctx context.Context, id, userID string) (*model.Post, error) {
	var post model.Post

	err := p.conn.QueryRowContext(ctx,
		`SELECT id, title, content, created_at, user_id
		 FROM posts
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&post.ID, &post.Title, &post.Content, &post.CreatedAt, &post.UserID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &post, nil
}

// UpdateOwned replaces title and content of the post identified by
// (post.ID, post.UserID). Zero rows affected means the post doesn't exist
// for this owner — reported as not found, never an insert.
func (p *PostDB) UpdateOwned(ctx context.Context, post *model.Post) error {
	result, err := p.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, content = ?
		 WHERE id = ? AND user_id = ?`,
		post.Title,
		post.Content,
		post.ID,
		post.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// DeleteOwned removes the post identified by (id, userID) and reports how
// many rows went away. Zero is a valid outcome: deletes are idempotent.
func (p *PostDB) DeleteOwned(ctx context.Context, id, userID string) (int64, error) {
	result, err := p.conn.ExecContext(ctx,
		`DELETE FROM posts WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
