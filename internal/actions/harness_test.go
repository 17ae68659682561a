package actions

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/teamkit/internal/auth"
	"github.com/charlesng35/teamkit/internal/billing"
	"github.com/charlesng35/teamkit/internal/database/testutil"
	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/internal/services"
	"github.com/charlesng35/teamkit/pkg/crypto"
)

type fakeSession struct {
	payload *auth.SessionPayload
	cleared bool
}

func (f *fakeSession) Set(userID string) error {
	f.payload = &auth.SessionPayload{UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	return nil
}

func (f *fakeSession) Get() *auth.SessionPayload { return f.payload }

func (f *fakeSession) Clear() {
	f.payload = nil
	f.cleared = true
}

type stubCheckout struct {
	calls []billing.CheckoutRequest
}

func (s *stubCheckout) CheckoutURL(_ context.Context, req billing.CheckoutRequest) (string, error) {
	s.calls = append(s.calls, req)
	if req.Team == nil {
		return "/sign-up?redirect=checkout&priceId=" + req.PriceID, nil
	}
	return "https://pay.example.com/checkout?price_id=" + req.PriceID, nil
}

type harness struct {
	t        *testing.T
	db       *gorm.DB
	store    *services.Store
	actions  *Actions
	checkout *stubCheckout
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := services.NewStore(db)
	require.NoError(t, err)

	checkout := &stubCheckout{}
	acts, err := New(store, crypto.NewPasswordHasher(crypto.HasherConfig{Cost: 4}), WithCheckout(checkout))
	require.NoError(t, err)

	return &harness{t: t, db: db, store: store, actions: acts, checkout: checkout}
}

func form(pairs ...string) url.Values {
	values := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		values.Set(pairs[i], pairs[i+1])
	}
	return values
}

// signUp registers email through the action and returns the user and its session.
func (h *harness) signUp(email, password string, extra ...string) (*models.User, *fakeSession) {
	h.t.Helper()
	sess := &fakeSession{}
	res, err := h.actions.SignUp(context.Background(), Request{
		Form:     form(append([]string{"email", email, "password", password}, extra...)...),
		ClientIP: "192.0.2.1",
		Session:  sess,
	})
	require.NoError(h.t, err)
	require.Empty(h.t, res.Error)

	user, err := h.store.Users.GetByEmail(context.Background(), email)
	require.NoError(h.t, err)
	return user, sess
}

func (h *harness) teamOf(userID string) *models.Team {
	h.t.Helper()
	team, err := h.store.Teams.GetForUser(context.Background(), userID)
	require.NoError(h.t, err)
	return team
}

func (h *harness) activities(userID string) []models.ActivityType {
	h.t.Helper()
	var logs []models.ActivityLog
	require.NoError(h.t, h.db.Where("user_id = ?", userID).Order("timestamp ASC").Find(&logs).Error)
	out := make([]models.ActivityType, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

func (h *harness) countRows(model any, query string, args ...any) int64 {
	h.t.Helper()
	var n int64
	require.NoError(h.t, h.db.Unscoped().Model(model).Where(query, args...).Count(&n).Error)
	return n
}
