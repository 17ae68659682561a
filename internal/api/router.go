package api

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/teamkit/internal/actions"
	"github.com/charlesng35/teamkit/internal/app"
	"github.com/charlesng35/teamkit/internal/auth"
	"github.com/charlesng35/teamkit/internal/handlers"
	"github.com/charlesng35/teamkit/internal/middleware"
	"github.com/charlesng35/teamkit/internal/services"
)

// Dependencies are the long-lived services the router wires into handlers.
type Dependencies struct {
	Store    *services.Store
	Actions  *actions.Actions
	Sessions *auth.SessionStore
	// RateStore backs the sign-in and sign-up limiter. Nil disables limiting.
	RateStore middleware.RateStore
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(deps Dependencies, cfg *app.Config) (*gin.Engine, error) {
	if deps.Store == nil {
		return nil, errors.New("store must be provided")
	}
	if deps.Actions == nil {
		return nil, errors.New("actions must be provided")
	}
	if deps.Sessions == nil {
		return nil, errors.New("session store must be provided")
	}
	if cfg == nil {
		return nil, errors.New("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(cfg.Server.HSTS))
	r.Use(middleware.Session(deps.Sessions))
	if cfg.Server.CSRF.Enabled {
		r.Use(middleware.CSRF())
	}

	registerHealthRoutes(r, cfg, deps.Store)
	registerMetricsRoutes(r, cfg)

	limit := middleware.RateLimit(deps.RateStore, cfg.Server.RateLimit.Requests, rateWindow(cfg))
	registerAuthRoutes(r, deps.Actions, limit)

	api := r.Group("/api")
	api.Use(middleware.RequireSession())

	accountHandler, err := handlers.NewAccountHandler(deps.Store)
	if err != nil {
		return nil, err
	}
	registerAccountRoutes(api, deps.Actions, accountHandler)
	registerTeamRoutes(api, deps.Actions, accountHandler)

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

func rateWindow(cfg *app.Config) time.Duration {
	if cfg.Server.RateLimit.Window > 0 {
		return cfg.Server.RateLimit.Window
	}
	return time.Minute
}
