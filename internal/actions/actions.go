// Package actions implements the server-side form mutations: sign-in, sign-up,
// account maintenance and team management. Every action returns a Result for
// user-facing outcomes and an error only for infrastructure failures.
package actions

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/charlesng35/teamkit/internal/billing"
	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/internal/services"
	"github.com/charlesng35/teamkit/pkg/crypto"
	"github.com/charlesng35/teamkit/pkg/logger"
)

const (
	// DashboardPath is where users land after authenticating.
	DashboardPath = "/dashboard"
	// SignInPath is where users land after signing out or deleting their account.
	SignInPath = "/sign-in"
)

const msgPasswordTooLong = "password must be at most 72 bytes"

// Option customises Actions.
type Option func(*Actions)

// WithCheckout sets the provider used to resume a checkout after authentication.
func WithCheckout(provider billing.CheckoutProvider) Option {
	return func(a *Actions) {
		if provider != nil {
			a.checkout = provider
		}
	}
}

// WithLogger overrides the module logger.
func WithLogger(log *zap.Logger) Option {
	return func(a *Actions) {
		if log != nil {
			a.log = log
		}
	}
}

// Actions holds the collaborators shared by every form action.
type Actions struct {
	store    *services.Store
	hasher   *crypto.PasswordHasher
	checkout billing.CheckoutProvider
	log      *zap.Logger

	decoyOnce   sync.Once
	decoyDigest string
}

// New constructs Actions over store and hasher.
func New(store *services.Store, hasher *crypto.PasswordHasher, opts ...Option) (*Actions, error) {
	if store == nil {
		return nil, errors.New("actions: store is required")
	}
	if hasher == nil {
		return nil, errors.New("actions: password hasher is required")
	}

	fallback, err := billing.NewHostedCheckout(billing.Config{})
	if err != nil {
		return nil, err
	}

	a := &Actions{
		store:    store,
		hasher:   hasher,
		checkout: fallback,
		log:      logger.WithModule("actions"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// recordActivity appends an activity entry outside any transaction. Failures
// are logged and do not change the action's outcome.
func (a *Actions) recordActivity(ctx context.Context, teamID, userID string, action models.ActivityType, req Request, meta map[string]any) {
	err := a.store.Activity.Log(ctx, services.ActivityEntry{
		TeamID:    teamID,
		UserID:    userID,
		Action:    action,
		IPAddress: req.ClientIP,
		Metadata:  meta,
	})
	if err != nil {
		a.log.Warn("record activity failed",
			zap.String("action", string(action)),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// hashPassword hashes a new password. A plaintext bcrypt cannot take comes
// back as a validation result instead of an error.
func (a *Actions) hashPassword(ctx context.Context, plaintext string) (string, *Result, error) {
	hash, err := a.hasher.Hash(ctx, plaintext)
	if errors.Is(err, crypto.ErrPasswordTooLong) {
		res := Fail(kindValidation, msgPasswordTooLong)
		return "", &res, nil
	}
	if err != nil {
		return "", nil, err
	}
	return hash, nil, nil
}

// verifyDecoy spends the same bcrypt work as a real comparison so unknown
// emails answer in about the same time as wrong passwords.
func (a *Actions) verifyDecoy(ctx context.Context, plaintext string) {
	a.decoyOnce.Do(func() {
		digest, err := a.hasher.Hash(ctx, "teamkit-decoy-password")
		if err != nil {
			a.log.Warn("build decoy digest failed", zap.Error(err))
			return
		}
		a.decoyDigest = digest
	})
	a.hasher.Verify(ctx, plaintext, a.decoyDigest)
}

func activityEntry(teamID, userID string, action models.ActivityType, req Request) services.ActivityEntry {
	return services.ActivityEntry{
		TeamID:    teamID,
		UserID:    userID,
		Action:    action,
		IPAddress: req.ClientIP,
	}
}
