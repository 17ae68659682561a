package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long an issued session stays valid without activity.
const DefaultSessionTTL = 24 * time.Hour

var (
	// ErrInvalidSignature covers tampered, malformed or foreign tokens.
	ErrInvalidSignature = errors.New("session: invalid signature")
	// ErrSessionExpired is returned for a correctly signed token past its expiry.
	ErrSessionExpired = errors.New("session: expired")
)

// SessionPayload is the identity carried by a session token.
type SessionPayload struct {
	UserID    string
	ExpiresAt time.Time
}

// SessionCodecConfig bundles the settings required to build a SessionCodec.
type SessionCodecConfig struct {
	Secret string
	Clock  func() time.Time
}

type sessionUser struct {
	ID string `json:"id"`
}

type sessionClaims struct {
	User    sessionUser `json:"user"`
	Expires string      `json:"expires"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies compact HS256 session tokens. It keeps no
// server-side state.
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

// NewSessionCodec constructs a SessionCodec with the process-wide secret.
func NewSessionCodec(cfg SessionCodecConfig) (*SessionCodec, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session codec: secret must be provided")
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &SessionCodec{secret: []byte(cfg.Secret), now: now}, nil
}

// Now returns the codec clock's current time.
func (c *SessionCodec) Now() time.Time {
	return c.now()
}

// Sign produces a token over the user id and expiry of payload.
func (c *SessionCodec) Sign(payload SessionPayload) (string, error) {
	if payload.UserID == "" {
		return "", errors.New("session codec: user id is required")
	}
	if payload.ExpiresAt.IsZero() {
		return "", errors.New("session codec: expiry is required")
	}

	claims := &sessionClaims{
		User:    sessionUser{ID: payload.UserID},
		Expires: payload.ExpiresAt.UTC().Format(time.RFC3339),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(payload.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(c.now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("session codec: sign: %w", err)
	}
	return token, nil
}

// Verify checks the signature first and the expiry second. It fails with
// ErrInvalidSignature or ErrSessionExpired, never both.
func (c *SessionCodec) Verify(token string) (SessionPayload, error) {
	if token == "" {
		return SessionPayload{}, ErrInvalidSignature
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	var claims sessionClaims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionPayload{}, ErrSessionExpired
		}
		return SessionPayload{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if claims.User.ID == "" {
		return SessionPayload{}, fmt.Errorf("%w: missing user id", ErrInvalidSignature)
	}

	return SessionPayload{
		UserID:    claims.User.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
