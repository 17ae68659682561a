package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamkit/internal/middleware"
	"github.com/charlesng35/teamkit/internal/models"
	"github.com/charlesng35/teamkit/internal/services"
	appErrors "github.com/charlesng35/teamkit/pkg/errors"
	"github.com/charlesng35/teamkit/pkg/response"
)

const maxActivityLimit = 50

// AccountHandler serves the dashboard's read endpoints for the signed-in user.
type AccountHandler struct {
	store *services.Store
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(store *services.Store) (*AccountHandler, error) {
	if store == nil {
		return nil, errors.New("account handler: store is required")
	}
	return &AccountHandler{store: store}, nil
}

type teamView struct {
	*models.Team
	Invitations []models.Invitation `json:"invitations"`
}

// GET /api/user
func (h *AccountHandler) User(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, user)
}

// GET /api/team
func (h *AccountHandler) Team(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	ctx := requestContext(c)
	team, err := h.store.Teams.GetForUser(ctx, user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	invitations, err := h.store.Invitations.ListPending(ctx, team.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, teamView{Team: team, Invitations: invitations})
}

// GET /api/activity
func (h *AccountHandler) Activity(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxActivityLimit {
			response.Error(c, appErrors.NewBadRequest("limit must be between 1 and 50"))
			return
		}
		limit = n
	}

	logs, err := h.store.Activity.ListForUser(requestContext(c), user.ID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs)
}

// currentUser loads the user RequireSession authenticated. A user deleted
// since the cookie was issued is treated as signed out.
func (h *AccountHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}

	user, err := h.store.Users.GetByID(requestContext(c), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			response.Error(c, appErrors.ErrUnauthorized)
			return nil, false
		}
		response.Error(c, err)
		return nil, false
	}
	return user, true
}
