package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamkit/internal/database/testutil"
	"github.com/charlesng35/teamkit/internal/middleware"
	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/internal/services"
)

type accountFixture struct {
	store *services.Store
	user  *models.User
	team  *models.Team
}

func newAccountFixture(t *testing.T) accountFixture {
	t.Helper()
	store, err := services.NewStore(testutil.MustOpenTestDB(t, testutil.WithAutoMigrate()))
	require.NoError(t, err)
	ctx := context.Background()

	user := &models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "digest"}
	require.NoError(t, store.Users.Create(ctx, user))
	team, err := store.Teams.Create(ctx, "Owner's Team")
	require.NoError(t, err)
	_, err = store.Teams.AddMember(ctx, team.ID, user.ID, models.RoleOwner)
	require.NoError(t, err)

	return accountFixture{store: store, user: user, team: team}
}

func serveAccount(t *testing.T, store *services.Store, userID, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler, err := NewAccountHandler(store)
	require.NoError(t, err)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.CtxUserIDKey, userID)
		}
		c.Next()
	})
	r.GET("/api/user", handler.User)
	r.GET("/api/team", handler.Team)
	r.GET("/api/activity", handler.Activity)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestNewAccountHandlerRequiresStore(t *testing.T) {
	_, err := NewAccountHandler(nil)
	require.Error(t, err)
}

func TestAccountUser(t *testing.T) {
	f := newAccountFixture(t)

	w := serveAccount(t, f.store, f.user.ID, "/api/user")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "owner@example.com")
	require.NotContains(t, w.Body.String(), "digest")

	require.Equal(t, http.StatusUnauthorized, serveAccount(t, f.store, "", "/api/user").Code)
	require.Equal(t, http.StatusUnauthorized, serveAccount(t, f.store, uuid.NewString(), "/api/user").Code)
}

func TestAccountTeamIncludesMembersAndInvitations(t *testing.T) {
	f := newAccountFixture(t)
	_, err := f.store.Invitations.Create(context.Background(), f.team.ID, "invitee@example.com", models.RoleMember, f.user.ID)
	require.NoError(t, err)

	w := serveAccount(t, f.store, f.user.ID, "/api/team")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Invitations []struct {
				Email string `json:"email"`
			} `json:"invitations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, f.team.ID, body.Data.ID)
	require.Equal(t, "Owner's Team", body.Data.Name)
	require.Len(t, body.Data.Invitations, 1)
	require.Equal(t, "invitee@example.com", body.Data.Invitations[0].Email)
	require.Contains(t, w.Body.String(), "owner@example.com")
}

func TestAccountActivity(t *testing.T) {
	f := newAccountFixture(t)
	ctx := context.Background()
	for _, action := range []models.ActivityType{models.ActivitySignUp, models.ActivitySignIn} {
		require.NoError(t, f.store.Activity.Log(ctx, services.ActivityEntry{TeamID: f.team.ID, UserID: f.user.ID, Action: action}))
	}

	w := serveAccount(t, f.store, f.user.ID, "/api/activity")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []struct {
			Action string `json:"action"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)

	w = serveAccount(t, f.store, f.user.ID, "/api/activity?limit=1")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)

	require.Equal(t, http.StatusBadRequest, serveAccount(t, f.store, f.user.ID, "/api/activity?limit=51").Code)
	require.Equal(t, http.StatusBadRequest, serveAccount(t, f.store, f.user.ID, "/api/activity?limit=abc").Code)
}
