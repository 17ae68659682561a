package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamkit/internal/actions"
	"github.com/charlesng35/teamkit/internal/handlers"
)

func registerAccountRoutes(api *gin.RouterGroup, acts *actions.Actions, handler *handlers.AccountHandler) {
	api.GET("/user", handler.User)
	api.GET("/activity", handler.Activity)

	account := api.Group("/account")
	{
		account.POST("", handlers.Form("update_account", acts.UpdateAccount))
		account.POST("/password", handlers.Form("update_password", acts.UpdatePassword))
		account.POST("/delete", handlers.Form("delete_account", acts.DeleteAccount))
	}
}
