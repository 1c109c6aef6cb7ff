package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
)

// SessionCookie is the name of the cookie holding the session token.
const SessionCookie = "session"

// contextKey is unexported so only this package can put identity values into
// a request context.
type contextKey int

const (
	identityKey contextKey = iota
	sessionIDKey
)

// ResolveSession resolves the session cookie into a full identity, once per
// request.
//
// Resolution is: cookie → verify token signature → load session row → check
// expiry → load user row. Any miss along that chain — no cookie, bad
// signature, logged-out session, expired session, deleted user — leaves the
// request anonymous and carries on; resolution never fails a request. Only
// an unexpected store error aborts (it propagates as a 500 via the error
// page later, not here). Handlers read the result with UserFromContext and
// pass the identity onward explicitly.
func ResolveSession(
	tokens *TokenService,
	sessions repository.SessionRepository,
	users repository.UserRepository,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID, userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			session, err := sessions.GetByID(r.Context(), sessionID)
			if err != nil {
				// A logged-out (deleted) session is ordinary anonymity;
				// anything else is a real store failure worth logging at
				// the handler via the generic error path — but the resolve
				// contract is to degrade to anonymous either way.
				next.ServeHTTP(w, r)
				return
			}
			if session.Expired(time.Now().UTC()) || session.UserID != userID {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), session.UserID)
			if err != nil {
				// Covers a user deleted out-of-band: the session reference
				// dangles, so the request proceeds unauthenticated.
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user, sessionID)))
		})
	}
}

// RequireUser guards protected routes: anonymous requests are redirected to
// the login page (303), never answered with an error status.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithUser attaches a resolved identity and session ID to a context.
// The resolver is the only production caller; handler tests use it to
// fabricate an authenticated request.
func ContextWithUser(ctx context.Context, user *model.User, sessionID string) context.Context {
	ctx = context.WithValue(ctx, identityKey, user)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// UserFromContext returns the resolved identity for the current request.
// ok is false for anonymous requests.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(identityKey).(*model.User)
	return user, ok && user != nil
}

// SessionIDFromContext returns the current request's session row ID, for
// logout.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}
