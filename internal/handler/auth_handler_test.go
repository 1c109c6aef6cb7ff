package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/auth"
)

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleRegister(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.authHandler.HandleRegister(rec, formRequest(http.MethodPost, "/register", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
	}))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// The account is usable immediately.
	_, err := f.authSvc.Verify(context.Background(), "alice", "secret123")
	assert.NoError(t, err)
}

func TestHandleRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		username string
		password string
		wantMsg  string
	}{
		{"short username", "ab", "secret123", "Username must be at least 3 characters long"},
		{"short password", "alice", "123", "Password must be at least 6 characters long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.authHandler.HandleRegister(rec, formRequest(http.MethodPost, "/register", url.Values{
				"username": {tt.username},
				"password": {tt.password},
			}))

			assert.Equal(t, http.StatusOK, rec.Code, "form re-renders, no redirect")
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
}

func TestHandleRegister_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "alice")

	rec := httptest.NewRecorder()
	f.authHandler.HandleRegister(rec, formRequest(http.MethodPost, "/register", url.Values{
		"username": {"alice"},
		"password": {"different456"},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "username already exists")
}

func TestHandleLogin_Success(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "alice")

	rec := httptest.NewRecorder()
	f.authHandler.HandleLogin(rec, formRequest(http.MethodPost, "/login", url.Values{
		"username": {"alice"},
		"password": {"secret123"},
	}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/my-posts", rec.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "login must set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)
	assert.NotEmpty(t, sessionCookie.Value)

	// The cookie references a live session row.
	sessionID, _, err := f.tokens.Validate(sessionCookie.Value)
	require.NoError(t, err)
	_, err = f.db.Sessions().GetByID(context.Background(), sessionID)
	assert.NoError(t, err)
}

// Wrong password and unknown username must be indistinguishable in the
// response: same status, same message, no hint which half was wrong.
func TestHandleLogin_FailuresLookIdentical(t *testing.T) {
	f := newFixture(t)
	f.registerUser(t, "alice")

	attempt := func(username, password string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		f.authHandler.HandleLogin(rec, formRequest(http.MethodPost, "/login", url.Values{
			"username": {username},
			"password": {password},
		}))
		return rec
	}

	wrongPassword := attempt("alice", "not-the-password")
	unknownUser := attempt("mallory", "whatever123")

	assert.Equal(t, http.StatusOK, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownUser.Code)
	assert.Contains(t, wrongPassword.Body.String(), "Invalid username or password")
	assert.Contains(t, unknownUser.Body.String(), "Invalid username or password")
	assert.Empty(t, wrongPassword.Result().Cookies(), "failed login must not set a cookie")
}

func TestHandleLogout(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "alice")

	token, err := f.authSvc.StartSession(context.Background(), user)
	require.NoError(t, err)
	sessionID, _, err := f.tokens.Validate(token)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req = req.WithContext(auth.ContextWithUser(req.Context(), user, sessionID))
	rec := httptest.NewRecorder()
	f.authHandler.HandleLogout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// Cookie cleared.
	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Empty(t, sessionCookie.Value)
	assert.Negative(t, sessionCookie.MaxAge)

	// Session row gone: the old token is dead server-side.
	_, err = f.db.Sessions().GetByID(context.Background(), sessionID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestShowLogin_RedirectsAuthenticated(t *testing.T) {
	f := newFixture(t)
	user := f.registerUser(t, "alice")

	rec := httptest.NewRecorder()
	f.authHandler.ShowLogin(rec, authedRequest(user, http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/my-posts", rec.Header().Get("Location"))
}
