package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "inkwell"

// TokenService signs and verifies the session-reference token the client
// holds in its cookie.
//
// The token is an HS256 JWT carrying exactly two pieces of identity data:
// the session row ID ("jti") and the user ID ("sub"). It is a reference,
// not a credential: a valid signature alone authenticates nobody, because
// the resolver still looks up the session row and the user record on every
// request. That server-side row is what logout deletes.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given HMAC secret.
// Use at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token referencing the given session and user. The expiry
// mirrors the session row's (the row is authoritative; the claim just lets
// obviously stale tokens fail fast without a store hit).
func (s *TokenService) Generate(sessionID, userID string, expiresAt time.Time) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string, returning the session ID and
// user ID it references.
//
// jwt.WithValidMethods pins HS256 so a token claiming another algorithm
// (including "none") is rejected outright.
func (s *TokenService) Validate(tokenStr string) (sessionID, userID string, err error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", fmt.Errorf("auth: token expired")
		}
		return "", "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("auth: invalid token claims")
	}
	if c.ID == "" || c.Subject == "" {
		return "", "", fmt.Errorf("auth: token missing session or subject")
	}

	return c.ID, c.Subject, nil
}
