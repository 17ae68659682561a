package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamkit/internal/models"
)

func TestInvitationServiceLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	team, err := store.Teams.Create(ctx, "Team")
	require.NoError(t, err)

	inv, err := store.Invitations.Create(ctx, team.ID, "Guest@Example.com", models.RoleMember, owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.InvitationPending, inv.Status)
	require.Equal(t, "guest@example.com", inv.Email)

	pending, err := store.Invitations.HasPending(ctx, team.ID, "guest@example.com")
	require.NoError(t, err)
	require.True(t, pending)

	list, err := store.Invitations.ListPending(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = store.Invitations.FindPending(ctx, inv.ID, "other@example.com")
	require.ErrorIs(t, err, ErrInvitationNotFound)

	found, err := store.Invitations.FindPending(ctx, inv.ID, "guest@example.com")
	require.NoError(t, err)
	require.Equal(t, team.ID, found.TeamID)

	require.NoError(t, store.Invitations.Accept(ctx, inv.ID))
	require.ErrorIs(t, store.Invitations.Accept(ctx, inv.ID), ErrInvitationStale)

	_, err = store.Invitations.FindPending(ctx, inv.ID, "guest@example.com")
	require.ErrorIs(t, err, ErrInvitationNotFound)

	pending, err = store.Invitations.HasPending(ctx, team.ID, "guest@example.com")
	require.NoError(t, err)
	require.False(t, pending)
}

func TestInvitationServiceRejectsInvalidRole(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Invitations.Create(context.Background(), "team", "x@example.com", models.Role("root"), "user")
	require.Error(t, err)
}
