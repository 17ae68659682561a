package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamkit/internal/auth"
	"github.com/charlesng35/teamkit/internal/models"
	apperrors "github.com/charlesng35/teamkit/pkg/errors"
)

type probeForm struct {
	Email string `form:"email" validate:"required,email"`
	Count int    `form:"count" validate:"min=1"`
}

func TestValidatedShortCircuitsOnFirstFailure(t *testing.T) {
	called := false
	handler := Validated(func(_ context.Context, data probeForm, _ Request) (Result, error) {
		called = true
		return Succeed("ok"), nil
	})

	res, err := handler(context.Background(), Request{Form: form("email", "not-an-email", "count", "0")})
	require.NoError(t, err)
	require.False(t, called)
	require.Equal(t, "email must be a valid email address", res.Error)
	require.Equal(t, apperrors.KindValidation, res.Kind)
}

func TestValidatedDecodesWeaklyTypedForm(t *testing.T) {
	var got probeForm
	handler := Validated(func(_ context.Context, data probeForm, _ Request) (Result, error) {
		got = data
		return Succeed("ok"), nil
	})

	res, err := handler(context.Background(), Request{Form: form("email", "a@example.com", "count", "3", "extra", "x")})
	require.NoError(t, err)
	require.Equal(t, "ok", res.Success)
	require.Equal(t, probeForm{Email: "a@example.com", Count: 3}, got)
}

func TestValidatedRejectsUndecodableInput(t *testing.T) {
	handler := Validated(func(_ context.Context, data probeForm, _ Request) (Result, error) {
		t.Fatal("handler must not run")
		return Result{}, nil
	})

	res, err := handler(context.Background(), Request{Form: form("email", "a@example.com", "count", "many")})
	require.NoError(t, err)
	require.Equal(t, invalidFormMessage, res.Error)
}

func TestValidatedWithUserRequiresSession(t *testing.T) {
	h := newHarness(t)
	user, _ := h.signUp("member@example.com", "password123")

	called := false
	handler := ValidatedWithUser(h.store.Users, func(_ context.Context, _ probeForm, _ Request, u *models.User) (Result, error) {
		called = true
		return Succeed(u.ID), nil
	})

	res, err := handler(context.Background(), Request{Form: form("email", "a@example.com", "count", "1"), Session: &fakeSession{}})
	require.NoError(t, err)
	require.Equal(t, "Unauthorized", res.Error)
	require.Equal(t, apperrors.KindAuth, res.Kind)
	require.False(t, called)

	res, err = handler(context.Background(), Request{Form: form("email", "a@example.com", "count", "1")})
	require.NoError(t, err)
	require.Equal(t, "Unauthorized", res.Error)

	ghost := &fakeSession{payload: &auth.SessionPayload{UserID: "00000000-0000-0000-0000-000000000000"}}
	res, err = handler(context.Background(), Request{Form: form("email", "a@example.com", "count", "1"), Session: ghost})
	require.NoError(t, err)
	require.Equal(t, "Unauthorized", res.Error)
	require.False(t, called)

	sess := &fakeSession{payload: &auth.SessionPayload{UserID: user.ID}}
	res, err = handler(context.Background(), Request{Form: form("email", "bad", "count", "1"), Session: sess})
	require.NoError(t, err)
	require.Equal(t, "email must be a valid email address", res.Error)
	require.False(t, called)

	res, err = handler(context.Background(), Request{Form: form("email", "a@example.com", "count", "1"), Session: sess})
	require.NoError(t, err)
	require.Equal(t, user.ID, res.Success)
	require.True(t, called)
}

func TestResultStatusAndOutcome(t *testing.T) {
	cases := []struct {
		res     Result
		status  int
		outcome string
	}{
		{RedirectTo("/dashboard"), 303, "redirect"},
		{Succeed("done"), 200, "success"},
		{Fail(apperrors.KindValidation, "bad"), 422, "validation"},
		{Fail(apperrors.KindAuth, "no"), 401, "auth"},
		{Fail(apperrors.KindConflict, "dup"), 409, "conflict"},
		{Fail(apperrors.KindState, "stale"), 410, "state"},
		{Fail(apperrors.KindNotFound, "gone"), 404, "not_found"},
		{Result{Error: "plain"}, 422, "validation"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.status, tc.res.Status(), tc.outcome)
		require.Equal(t, tc.outcome, tc.res.Outcome())
	}
	require.True(t, Fail(apperrors.KindAuth, "x").Failed())
	require.False(t, Succeed("x").Failed())
}
