// Package service contains the business logic layer: credential
// verification, registration, session lifecycle, and ownership-scoped post
// operations. Services know nothing about HTTP; handlers pass identities in
// explicitly and translate the returned domain errors.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/inkwell-blog/inkwell/internal/apperror"
	"github.com/inkwell-blog/inkwell/internal/auth"
	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/internal/repository"
)

// Registration rules. Reported individually so the form can say which rule
// was missed (the messages are part of the app's observable behavior and are
// asserted in tests).
const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// AuthService verifies credentials, registers accounts, and manages login
// sessions.
type AuthService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	passwords  *auth.PasswordService
	tokens     *auth.TokenService
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewAuthService creates an AuthService. sessionTTL bounds how long a login
// session lives before the resolver treats it as dead.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		passwords:  passwords,
		tokens:     tokens,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Verify checks a username/password pair and returns the matching identity.
//
// An unknown username yields apperror.ErrIncorrectUsername and a wrong
// password apperror.ErrIncorrectPassword; both match ErrBadCredentials, and
// the handler renders the same generic message for either, so the split is
// visible to logs and tests but not to users. Verify has no side effects —
// binding the identity to a session is StartSession's job.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.IncorrectUsername()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, apperror.ErrIncorrectPassword) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	return user, nil
}

// Register validates and creates a new account.
//
// Username is trimmed before validation and stored trimmed; the password is
// hashed with bcrypt and the plaintext never leaves this call. A username
// collision surfaces as apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if len(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("Username must be at least %d characters long", MinUsernameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// StartSession binds a verified identity to a new session and returns the
// token the client will hold. The token stores only the session ID and the
// user's key — never the record, never the hash.
func (s *AuthService) StartSession(ctx context.Context, user *model.User) (string, error) {
	session := &model.Session{
		ID:        xid.New().String(),
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("service/auth: creating session: %w", err)
	}

	token, err := s.tokens.Generate(session.ID, user.ID, session.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("service/auth: signing session token: %w", err)
	}

	s.logger.Info("session started",
		slog.String("userID", user.ID),
		slog.String("sessionID", session.ID),
	)

	return token, nil
}

// EndSession invalidates a session server-side. Once it returns nil, every
// resolve of that session reference yields unauthenticated. Callers must
// check the error before redirecting — a failed logout is surfaced, not
// swallowed.
func (s *AuthService) EndSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("service/auth: ending session %s: %w", sessionID, err)
	}

	s.logger.Info("session ended", slog.String("sessionID", sessionID))
	return nil
}

// SweepExpiredSessions deletes sessions past their expiry. Called
// opportunistically (on startup and on a timer); resolution doesn't depend
// on it, since the resolver checks expiry itself.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) error {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("service/auth: sweeping sessions: %w", err)
	}
	if n > 0 {
		s.logger.Debug("expired sessions removed", slog.Int64("count", n))
	}
	return nil
}

// LoginOrRegisterGitHub resolves a GitHub profile to a local account,
// creating one on first login. OAuth accounts carry no password hash; their
// username is the GitHub login, suffixed with the GitHub ID if the plain
// login is already taken locally.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetByGitHubID(ctx, ghUser.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up GitHub user %d: %w", ghUser.ID, err)
	}

	githubID := ghUser.ID
	user = &model.User{
		Username: ghUser.Login,
		GitHubID: &githubID,
	}

	err = s.users.Create(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		// Local account already owns that username; fall back to a
		// disambiguated one.
		user.Username = fmt.Sprintf("%s-%d", ghUser.Login, ghUser.ID)
		err = s.users.Create(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating GitHub user %q: %w", ghUser.Login, err)
	}

	s.logger.Info("user registered via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}
