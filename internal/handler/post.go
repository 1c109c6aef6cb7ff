package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/metrics"
	"github.com/inkwell-blog/inkwell/internal/service"
)

// PostHandler serves the post pages. All of its routes sit behind
// auth.RequireUser, so UserFromContext always succeeds here; the resolved
// identity is passed into every service call explicitly.
type PostHandler struct {
	posts  *service.PostService
	render *Renderer
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, render *Renderer, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		render: render,
		logger: logger,
	}
}

// HandleHome routes the bare domain: authenticated users land on their
// posts, everyone else on the login page. GET /
func (h *PostHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/my-posts", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// HandleList renders the user's posts, newest first, with optional search.
// GET /my-posts?q=term
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	searchQuery := r.URL.Query().Get("q")

	posts, err := h.posts.List(r.Context(), user.ID, searchQuery)
	if err != nil {
		h.render.ServerError(w, user, err)
		return
	}

	h.render.Render(w, http.StatusOK, "index", map[string]any{
		"Title":       "My Posts",
		"User":        user,
		"Posts":       posts,
		"SearchQuery": searchQuery,
	})
}

// ShowNew renders the empty editor. GET /posts/new
func (h *PostHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	h.render.Render(w, http.StatusOK, "new", map[string]any{
		"Title": "New Post",
		"User":  user,
	})
}

// HandleCreate creates a post. POST /posts
//
// An all-blank submission is deliberately not an error: nothing is stored
// and the user is sent back to their posts as if nothing happened.
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	_, err := h.posts.Create(r.Context(), user.ID, r.FormValue("title"), r.FormValue("content"))
	if err != nil {
		if errors.Is(err, apperror.ErrEmptyPost) {
			http.Redirect(w, r, "/my-posts", http.StatusSeeOther)
			return
		}
		h.render.ServerError(w, user, err)
		return
	}

	metrics.PostWritesTotal.WithLabelValues("create").Inc()
	http.Redirect(w, r, "/my-posts", http.StatusSeeOther)
}

// HandleShow renders a single post. GET /posts/{id}
//
// A post that exists under another owner renders the same 404 page as one
// that doesn't exist at all.
func (h *PostHandler) HandleShow(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := r.PathValue("id")

	post, err := h.posts.Get(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFound(w, user)
			return
		}
		h.render.ServerError(w, user, err)
		return
	}

	h.render.Render(w, http.StatusOK, "show", map[string]any{
		"Title": post.Title,
		"User":  user,
		"Post":  post,
	})
}

// ShowEdit renders the editor pre-filled with the post. GET /posts/{id}/edit
func (h *PostHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := r.PathValue("id")

	post, err := h.posts.Get(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFound(w, user)
			return
		}
		h.render.ServerError(w, user, err)
		return
	}

	h.render.Render(w, http.StatusOK, "edit", map[string]any{
		"Title": "Edit: " + post.Title,
		"User":  user,
		"Post":  post,
	})
}

// HandleUpdate replaces a post's title and content. PUT /posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := r.PathValue("id")

	_, err := h.posts.Update(r.Context(), id, user.ID, r.FormValue("title"), r.FormValue("content"))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			h.render.NotFound(w, user)
			return
		}
		h.render.ServerError(w, user, err)
		return
	}

	metrics.PostWritesTotal.WithLabelValues("update").Inc()
	http.Redirect(w, r, "/posts/"+id, http.StatusSeeOther)
}

// HandleDelete removes a post. DELETE /posts/{id}
//
// Deleting a missing or foreign post succeeds quietly; the redirect is the
// same either way.
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := r.PathValue("id")

	if err := h.posts.Delete(r.Context(), id, user.ID); err != nil {
		h.render.ServerError(w, user, err)
		return
	}

	metrics.PostWritesTotal.WithLabelValues("delete").Inc()
	http.Redirect(w, r, "/my-posts", http.StatusSeeOther)
}
