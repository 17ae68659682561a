package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamkit/internal/database/testutil"
	"github.com/charlesng35/teamkit/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(testutil.MustOpenTestDB(t, testutil.WithAutoMigrate()))
	require.NoError(t, err)
	return store
}

func createUser(t *testing.T, store *Store, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "digest"}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return user
}

func TestNewStoreRequiresDB(t *testing.T) {
	_, err := NewStore(nil)
	require.Error(t, err)
}

func TestStoreTransactionRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Transaction(ctx, func(tx *Store) error {
		user := &models.User{Email: "rollback@example.com", PasswordHash: "digest"}
		require.NoError(t, tx.Users.Create(ctx, user))
		_, err := tx.Teams.Create(ctx, "Rollback Team")
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.Users.GetByEmail(ctx, "rollback@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.Teams)
}

func TestStoreStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	gone := createUser(t, store, "gone@example.com")
	require.NoError(t, store.Users.SoftDelete(ctx, gone))

	team, err := store.Teams.Create(ctx, "Stats Team")
	require.NoError(t, err)
	_, err = store.Invitations.Create(ctx, team.ID, "a@example.com", models.RoleMember, owner.ID)
	require.NoError(t, err)
	accepted, err := store.Invitations.Create(ctx, team.ID, "b@example.com", models.RoleMember, owner.ID)
	require.NoError(t, err)
	require.NoError(t, store.Invitations.Accept(ctx, accepted.ID))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, Stats{ActiveUsers: 1, Teams: 1, PendingInvitations: 1}, stats)

	require.NoError(t, store.Ping(ctx))
}
