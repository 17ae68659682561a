package crypto

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultPasswordCost mirrors the work factor used for stored credentials.
const DefaultPasswordCost = 10

// ErrPasswordTooLong is returned when a plaintext exceeds bcrypt's 72 byte input limit.
var ErrPasswordTooLong = errors.New("crypto: password exceeds 72 bytes")

// HasherConfig tunes the bcrypt work factor and how many hashes may run at once.
type HasherConfig struct {
	Cost          int
	MaxConcurrent int
}

// PasswordHasher hashes and verifies passwords with bcrypt. Hashing is CPU bound, so
// concurrent calls are bounded by a weighted semaphore sized to the host by default.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewPasswordHasher builds a hasher, falling back to DefaultPasswordCost and GOMAXPROCS.
func NewPasswordHasher(cfg HasherConfig) *PasswordHasher {
	cost := cfg.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}

	limit := cfg.MaxConcurrent
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	return &PasswordHasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(limit)),
	}
}

// Hash returns a salted bcrypt digest of the plaintext.
func (h *PasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("crypto: hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests and a cancelled
// context both yield false.
func (h *PasswordHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	if err := h.acquire(ctx); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

func (h *PasswordHasher) acquire(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("crypto: wait for hasher: %w", err)
	}
	return nil
}

// HashPassword hashes with the default cost and no concurrency bound. Used by seeding and tests.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultPasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares the hashed password with the plaintext candidate.
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
