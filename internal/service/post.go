package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
)

// DefaultTitle is used when a post's title is empty after trimming.
const DefaultTitle = "Untitled"

// imgSrcPattern pulls the src out of the first <img> tag by plain pattern
// scan — not an HTML parse, so malformed markup simply fails to match.
var imgSrcPattern = regexp.MustCompile(`<img[^>]+src="([^">]+)"`)

// PostService implements the ownership-scoped content operations.
//
// Every method takes the owner's user ID as an explicit parameter — there is
// no ambient identity. The route guard already keeps anonymous requests out,
// but the service doesn't rely on that: an empty owner ID matches no rows,
// so the combined (id, owner) predicate still holds.
type PostService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(repo repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:   repo,
		logger: logger,
	}
}

// List returns the owner's posts, newest first, each annotated with its
// preview image. A non-empty search narrows to posts whose title or content
// contains it, case-insensitively.
func (s *PostService) List(ctx context.Context, ownerID, search string) ([]model.Post, error) {
	posts, err := s.repo.ListByUser(ctx, ownerID, search)
	if err != nil {
		s.logger.Error("failed to list posts",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	for i := range posts {
		posts[i].PreviewImage = FirstImageSrc(posts[i].Content)
	}

	return posts, nil
}

// Create trims and persists a new post for the owner.
//
// When title and content are both empty after trimming, nothing is created
// and apperror.ErrEmptyPost comes back — the caller redirects silently
// rather than rendering a validation error. Otherwise the title falls back
// to "Untitled" and the content is stored verbatim (it may be empty).
func (s *PostService) Create(ctx context.Context, ownerID, rawTitle, rawContent string) (*model.Post, error) {
	title := strings.TrimSpace(rawTitle)
	content := strings.TrimSpace(rawContent)

	if title == "" && content == "" {
		return nil, apperror.ErrEmptyPost
	}
	if title == "" {
		title = DefaultTitle
	}

	post := &model.Post{
		Title:   title,
		Content: content,
		UserID:  ownerID,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("ownerID", ownerID),
	)

	return post, nil
}

// Get fetches the owner's post by ID. A post owned by someone else is
// reported exactly like a nonexistent one: the repository applies (id AND
// owner) as a single predicate, so there is no intermediate state to leak
// the difference.
func (s *PostService) Get(ctx context.Context, id, ownerID string) (*model.Post, error) {
	post, err := s.repo.GetOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Update replaces the post's title and content in full, under the same
// combined predicate as Get. No matching row yields NotFound; nothing is
// ever created here.
func (s *PostService) Update(ctx context.Context, id, ownerID, rawTitle, rawContent string) (*model.Post, error) {
	title := strings.TrimSpace(rawTitle)
	if title == "" {
		title = DefaultTitle
	}

	post := &model.Post{
		ID:      id,
		Title:   title,
		Content: strings.TrimSpace(rawContent),
		UserID:  ownerID,
	}

	if err := s.repo.UpdateOwned(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post updated",
		slog.String("id", id),
		slog.String("ownerID", ownerID),
	)

	return post, nil
}

// Delete removes the owner's post. Deleting a post that doesn't exist (or
// isn't theirs) succeeds as a no-op, so the operation is idempotent.
func (s *PostService) Delete(ctx context.Context, id, ownerID string) error {
	n, err := s.repo.DeleteOwned(ctx, id, ownerID)
	if err != nil {
		return err
	}

	if n > 0 {
		s.logger.Info("post deleted",
			slog.String("id", id),
			slog.String("ownerID", ownerID),
		)
	}

	return nil
}

// FirstImageSrc returns the src of the first <img> tag in the given
// rich-text HTML, or "" when there is none. Pure string scan; never errors,
// whatever the markup looks like.
func FirstImageSrc(content string) string {
	if content == "" {
		return ""
	}
	m := imgSrcPattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return m[1]
}
