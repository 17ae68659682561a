package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamkit/internal/actions"
	"github.com/charlesng35/teamkit/internal/handlers"
)

func registerTeamRoutes(api *gin.RouterGroup, acts *actions.Actions, handler *handlers.AccountHandler) {
	team := api.Group("/team")
	{
		team.GET("", handler.Team)
		team.POST("/members/remove", handlers.Form("remove_team_member", acts.RemoveTeamMember))
		team.POST("/invitations", handlers.Form("invite_team_member", acts.InviteTeamMember))
	}
}
