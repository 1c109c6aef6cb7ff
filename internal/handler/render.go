// Package handler contains the HTTP handlers for the blog's server-rendered
// pages. Handlers parse requests, call services with the identity passed in
// explicitly, and render templates; business rules live in the service
// layer.
package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// tagPattern strips markup for plain-text excerpts on the index page.
var tagPattern = regexp.MustCompile(`<[^>]*>?`)

// pages that compose with the shared layout.
var pageFiles = []string{
	"index", "show", "new", "edit", "login", "register", "404", "error",
}

// Renderer parses the page templates once at startup and renders them with
// the shared layout.
//
// Sanitization happens here and only here: post content is stored verbatim
// and passed through bluemonday's UGC policy at render time, the same
// arrangement the rich-text editor expects. Nothing sanitized is ever
// written back to storage.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses layout.html plus each page template under templateDir.
func NewRenderer(templateDir string, logger *slog.Logger) (*Renderer, error) {
	policy := bluemonday.UGCPolicy()

	funcs := template.FuncMap{
		// sanitizeHTML renders stored rich text safely. Returning
		// template.HTML marks the sanitizer's output as trusted so the
		// template engine doesn't escape it a second time.
		"sanitizeHTML": func(s string) template.HTML {
			return template.HTML(policy.Sanitize(s))
		},
		// stripHTML drops all tags, for plain-text excerpts.
		"stripHTML": func(s string) string {
			return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
		},
		"excerpt": func(s string, n int) string {
			s = strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
			runes := []rune(s)
			if len(runes) <= n {
				return s
			}
			return string(runes[:n]) + "…"
		},
		"formatDate": func(t time.Time) string {
			return t.Format("January 2, 2006")
		},
	}

	templates := make(map[string]*template.Template, len(pageFiles))
	layout := filepath.Join(templateDir, "layout.html")

	for _, page := range pageFiles {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFiles(
			layout,
			filepath.Join(templateDir, page+".html"),
		)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Renderer{
		templates: templates,
		logger:    logger,
	}, nil
}

// Render writes the named page with the given status. data is handed to the
// layout; pages expect at least "Title" and read "User" for the nav bar.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data map[string]any) {
	tmpl, ok := rn.templates[page]
	if !ok {
		rn.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		// Headers are gone at this point; all we can do is log.
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
	}
}

// NotFound renders the shared 404 page. Ownership misses and genuinely
// missing posts both land here and look identical to the client.
func (rn *Renderer) NotFound(w http.ResponseWriter, user any) {
	rn.Render(w, http.StatusNotFound, "404", map[string]any{
		"Title": "Not Found",
		"User":  user,
	})
}

// ServerError logs err and renders the generic error page. The message shown
// to the user never includes internals.
func (rn *Renderer) ServerError(w http.ResponseWriter, user any, err error) {
	rn.logger.Error("request failed", slog.String("error", err.Error()))
	rn.Render(w, http.StatusInternalServerError, "error", map[string]any{
		"Title": "Something went wrong",
		"User":  user,
	})
}
