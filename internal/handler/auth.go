package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/metrics"
	"github.com/inkwell-blog/inkwell/internal/service"
)

// AuthHandler serves the login/register/logout pages and, when configured,
// the GitHub OAuth flow.
type AuthHandler struct {
	authSvc    *service.AuthService
	github     *auth.GitHubProvider // nil when OAuth is not configured
	render     *Renderer
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil, in which case
// only password login is offered.
func NewAuthHandler(
	authSvc *service.AuthService,
	github *auth.GitHubProvider,
	render *Renderer,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authSvc:    authSvc,
		github:     github,
		render:     render,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// GitHubEnabled reports whether the OAuth routes should be registered.
func (h *AuthHandler) GitHubEnabled() bool {
	return h.github != nil
}

// ShowLogin renders the login form. GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/my-posts", http.StatusFound)
		return
	}
	h.render.Render(w, http.StatusOK, "login", map[string]any{
		"Title":  "Log In",
		"GitHub": h.GitHubEnabled(),
	})
}

// HandleLogin verifies credentials and starts a session. POST /login
//
// Credential failures re-render the form with one generic message whichever
// half was wrong; the specific cause exists only in logs.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.authSvc.Verify(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, apperror.ErrBadCredentials) {
			h.logger.Info("login failed",
				slog.String("username", username),
				slog.Bool("unknownUsername", errors.Is(err, apperror.ErrIncorrectUsername)),
			)
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			h.render.Render(w, http.StatusOK, "login", map[string]any{
				"Title":    "Log In",
				"Error":    "Invalid username or password",
				"Username": username,
				"GitHub":   h.GitHubEnabled(),
			})
			return
		}
		h.render.ServerError(w, nil, err)
		return
	}

	token, err := h.authSvc.StartSession(r.Context(), user)
	if err != nil {
		h.render.ServerError(w, nil, err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/my-posts", http.StatusSeeOther)
}

// ShowRegister renders the registration form. GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/my-posts", http.StatusFound)
		return
	}
	h.render.Render(w, http.StatusOK, "register", map[string]any{
		"Title": "Register",
	})
}

// HandleRegister creates an account. POST /register
//
// Validation failures and username conflicts re-render the form with the
// specific message; unexpected store errors become a generic retry message
// rather than leaking internals.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	_, err := h.authSvc.Register(r.Context(), username, password)
	if err != nil {
		msg := "Something went wrong. Please try again."
		var appErr *apperror.AppError
		if errors.As(err, &appErr) &&
			(errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict)) {
			msg = appErr.Message
		} else {
			h.logger.Error("registration failed", slog.String("error", err.Error()))
		}
		h.render.Render(w, http.StatusOK, "register", map[string]any{
			"Title":    "Register",
			"Error":    msg,
			"Username": username,
		})
		return
	}

	metrics.RegistrationsTotal.Inc()
	http.Redirect(w, r, "/login", http.StatusFound)
}

// HandleLogout ends the session. POST /logout
//
// The session row must be gone before the redirect goes out: if the delete
// fails, the user sees the error page and keeps their cookie — no silent
// half-logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if sessionID, ok := auth.SessionIDFromContext(r.Context()); ok {
		if err := h.authSvc.EndSession(r.Context(), sessionID); err != nil {
			h.render.ServerError(w, user, err)
			return
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleGitHubLogin starts the OAuth flow. GET /auth/github/login
//
// The random state goes into a short-lived cookie and must match on
// callback, which ties the callback to a flow this server started.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth flow. GET /auth/github/callback
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" ||
		r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: authorization denied",
			slog.String("error", errParam))
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.render.ServerError(w, nil, err)
		return
	}

	user, err := h.authSvc.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.render.ServerError(w, nil, err)
		return
	}

	token, err := h.authSvc.StartSession(r.Context(), user)
	if err != nil {
		h.render.ServerError(w, nil, err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.setSessionCookie(w, token)
	http.Redirect(w, r, "/my-posts", http.StatusSeeOther)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable when serving over HTTPS
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
