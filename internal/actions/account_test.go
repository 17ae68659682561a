package actions

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamkit/internal/models"
	apperrors "github.com/charlesng35/teamkit/pkg/errors"
)

func TestUpdatePasswordChecks(t *testing.T) {
	h := newHarness(t)
	user, sess := h.signUp("pw@example.com", "password123")

	cases := []struct {
		name    string
		current string
		next    string
		confirm string
		want    string
	}{
		{"wrong current", "not-the-password", "newpassword1", "newpassword1", "Current password is incorrect."},
		{"unchanged", "password123", "password123", "password123", "New password must be different from the current password."},
		{"mismatch", "password123", "newpassword1", "newpassword2", "New password and confirmation password do not match."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := h.actions.UpdatePassword(context.Background(), Request{
				Form:    form("currentPassword", tc.current, "newPassword", tc.next, "confirmPassword", tc.confirm),
				Session: sess,
			})
			require.NoError(t, err)
			require.Equal(t, tc.want, res.Error)
			require.Equal(t, apperrors.KindValidation, res.Kind)
			require.Empty(t, res.Fields)
		})
	}

	res, err := h.actions.UpdatePassword(context.Background(), Request{
		Form:    form("currentPassword", "password123", "newPassword", "newpassword1", "confirmPassword", "newpassword1"),
		Session: sess,
	})
	require.NoError(t, err)
	require.Equal(t, "Password updated successfully.", res.Success)
	require.Contains(t, h.activities(user.ID), models.ActivityUpdatePassword)

	old, err := h.actions.SignIn(context.Background(), Request{
		Form:    form("email", "pw@example.com", "password", "password123"),
		Session: &fakeSession{},
	})
	require.NoError(t, err)
	require.NotEmpty(t, old.Error)

	fresh, err := h.actions.SignIn(context.Background(), Request{
		Form:    form("email", "pw@example.com", "password", "newpassword1"),
		Session: &fakeSession{},
	})
	require.NoError(t, err)
	require.Equal(t, DashboardPath, fresh.Redirect)
}

func TestUpdatePasswordRejectsPasswordBcryptCannotHash(t *testing.T) {
	h := newHarness(t)
	user, sess := h.signUp("long@example.com", "password123")

	next := strings.Repeat("n", 90)
	res, err := h.actions.UpdatePassword(context.Background(), Request{
		Form:    form("currentPassword", "password123", "newPassword", next, "confirmPassword", next),
		Session: sess,
	})
	require.NoError(t, err)
	require.Equal(t, "password must be at most 72 bytes", res.Error)
	require.Equal(t, apperrors.KindValidation, res.Kind)
	require.NotContains(t, h.activities(user.ID), models.ActivityUpdatePassword)

	stored, err := h.store.Users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestDeleteAccountWrongPassword(t *testing.T) {
	h := newHarness(t)
	user, sess := h.signUp("keep@example.com", "password123")

	res, err := h.actions.DeleteAccount(context.Background(), Request{
		Form:    form("password", "wrong-password"),
		Session: sess,
	})
	require.NoError(t, err)
	require.Equal(t, "Incorrect password. Account deletion failed.", res.Error)
	require.False(t, sess.cleared)

	_, err = h.store.Users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
}

func TestDeleteAccountSoftDeletes(t *testing.T) {
	h := newHarness(t)
	user, sess := h.signUp("gone@example.com", "password123")
	team := h.teamOf(user.ID)

	res, err := h.actions.DeleteAccount(context.Background(), Request{
		Form:    form("password", "password123"),
		Session: sess,
	})
	require.NoError(t, err)
	require.Equal(t, SignInPath, res.Redirect)
	require.True(t, sess.cleared)

	var raw models.User
	require.NoError(t, h.db.Unscoped().First(&raw, "id = ?", user.ID).Error)
	require.True(t, raw.DeletedAt.Valid)
	require.Equal(t, "gone@example.com-"+user.ID+"-deleted", raw.Email)
	require.EqualValues(t, 0, h.countRows(&models.TeamMember{}, "user_id = ? AND team_id = ?", user.ID, team.ID))
	require.Contains(t, h.activities(user.ID), models.ActivityDeleteAccount)

	stale := &fakeSession{}
	require.NoError(t, stale.Set(user.ID))
	res, err = h.actions.UpdateAccount(context.Background(), Request{
		Form:    form("name", "Ghost", "email", "ghost@example.com"),
		Session: stale,
	})
	require.NoError(t, err)
	require.Equal(t, "Unauthorized", res.Error)

	again, _ := h.signUp("gone@example.com", "password123")
	require.NotEqual(t, user.ID, again.ID)
}

func TestUpdateAccount(t *testing.T) {
	h := newHarness(t)
	user, sess := h.signUp("first@example.com", "password123")
	h.signUp("second@example.com", "password123")

	res, err := h.actions.UpdateAccount(context.Background(), Request{
		Form:    form("name", "First", "email", "second@example.com"),
		Session: sess,
	})
	require.NoError(t, err)
	require.Equal(t, "Email is already in use.", res.Error)
	require.Equal(t, apperrors.KindConflict, res.Kind)

	res, err = h.actions.UpdateAccount(context.Background(), Request{
		Form:    form("name", "", "email", "first@example.com"),
		Session: sess,
	})
	require.NoError(t, err)
	require.Equal(t, "name is required", res.Error)

	res, err = h.actions.UpdateAccount(context.Background(), Request{
		Form:    form("name", "First Person", "email", "renamed@example.com"),
		Session: sess,
	})
	require.NoError(t, err)
	require.Equal(t, "Account updated successfully.", res.Success)
	require.Equal(t, map[string]string{"name": "First Person", "email": "renamed@example.com"}, res.Fields)

	reloaded, err := h.store.Users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, "First Person", reloaded.Name)
	require.Equal(t, "renamed@example.com", reloaded.Email)
	require.Contains(t, h.activities(user.ID), models.ActivityUpdateAccount)
}
