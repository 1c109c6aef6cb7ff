package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/model"
)

// In-memory fakes for the two repositories the resolver touches.

type fakeSessionRepo struct {
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *model.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperror.NotFound("session", id)
	}
	return s, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for id, s := range f.sessions {
		if s.Expired(time.Now().UTC()) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) GetByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	for _, u := range f.users {
		if u.GitHubID != nil && *u.GitHubID == githubID {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", "github")
}

// resolveFixture wires a token service, fakes, and one logged-in user, and
// returns a request carrying a valid session cookie.
type resolveFixture struct {
	tokens   *TokenService
	sessions *fakeSessionRepo
	users    *fakeUserRepo
	user     *model.User
	token    string
}

func newResolveFixture(t *testing.T) *resolveFixture {
	t.Helper()

	tokens := newTestTokenService(t)
	sessions := newFakeSessionRepo()
	users := newFakeUserRepo()

	user := &model.User{ID: "user-1", Username: "alice"}
	users.users[user.ID] = user

	expiresAt := time.Now().UTC().Add(time.Hour)
	sessions.sessions["sess-1"] = &model.Session{
		ID:        "sess-1",
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}

	token, err := tokens.Generate("sess-1", user.ID, expiresAt)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	return &resolveFixture{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		user:     user,
		token:    token,
	}
}

// resolve runs one request through ResolveSession and reports the identity
// the inner handler observed.
func (f *resolveFixture) resolve(t *testing.T, cookie string) (*model.User, bool) {
	t.Helper()

	var gotUser *model.User
	var gotOK bool

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotOK = UserFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/my-posts", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	}

	handler := ResolveSession(f.tokens, f.sessions, f.users)(inner)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	return gotUser, gotOK
}

func TestResolveSession_NoCookie(t *testing.T) {
	f := newResolveFixture(t)

	_, ok := f.resolve(t, "")
	if ok {
		t.Error("request without a cookie should be anonymous")
	}
}

func TestResolveSession_ValidChain(t *testing.T) {
	f := newResolveFixture(t)

	user, ok := f.resolve(t, f.token)
	if !ok {
		t.Fatal("valid cookie should resolve to an identity")
	}
	if user.ID != "user-1" {
		t.Errorf("resolved user ID = %q, want %q", user.ID, "user-1")
	}
}

func TestResolveSession_GarbageToken(t *testing.T) {
	f := newResolveFixture(t)

	_, ok := f.resolve(t, "garbage")
	if ok {
		t.Error("garbage token should resolve to anonymous")
	}
}

// The core logout property: once the session row is gone, the same cookie
// that worked a moment ago resolves to anonymous.
func TestResolveSession_DeletedSession(t *testing.T) {
	f := newResolveFixture(t)

	if _, ok := f.resolve(t, f.token); !ok {
		t.Fatal("sanity: cookie should resolve before deletion")
	}

	delete(f.sessions.sessions, "sess-1")

	if _, ok := f.resolve(t, f.token); ok {
		t.Error("cookie should resolve to anonymous after the session row is deleted")
	}
}

func TestResolveSession_ExpiredSession(t *testing.T) {
	f := newResolveFixture(t)

	// Expire the row but keep the token's own expiry in the future, so the
	// row check is what rejects it.
	f.sessions.sessions["sess-1"].ExpiresAt = time.Now().UTC().Add(-time.Minute)

	if _, ok := f.resolve(t, f.token); ok {
		t.Error("expired session row should resolve to anonymous")
	}
}

func TestResolveSession_DeletedUser(t *testing.T) {
	f := newResolveFixture(t)

	delete(f.users.users, "user-1")

	if _, ok := f.resolve(t, f.token); ok {
		t.Error("dangling session (user deleted) should resolve to anonymous")
	}
}

func TestRequireUser_RedirectsAnonymous(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("inner handler should not run for anonymous requests")
	})

	req := httptest.NewRequest(http.MethodGet, "/my-posts", nil)
	rec := httptest.NewRecorder()

	RequireUser(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestRequireUser_PassesAuthenticated(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	user := &model.User{ID: "user-1", Username: "alice"}
	req := httptest.NewRequest(http.MethodGet, "/my-posts", nil)
	req = req.WithContext(ContextWithUser(req.Context(), user, "sess-1"))

	RequireUser(inner).ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("inner handler should run for authenticated requests")
	}
}
