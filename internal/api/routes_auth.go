package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamkit/internal/actions"
	"github.com/charlesng35/teamkit/internal/handlers"
	"github.com/charlesng35/teamkit/internal/middleware"
)

func registerAuthRoutes(engine *gin.Engine, acts *actions.Actions, limit gin.HandlerFunc) {
	auth := engine.Group("/api/auth")
	{
		auth.POST("/sign-in", limit, handlers.Form("sign_in", acts.SignIn))
		auth.POST("/sign-up", limit, handlers.Form("sign_up", acts.SignUp))
		auth.POST("/sign-out", middleware.RequireSession(), handlers.Form("sign_out", acts.SignOut))
	}
}
