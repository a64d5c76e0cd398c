// Package router maps URLs to handlers and attaches the auth and rate
// limiting middleware to each group.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/live-show-lineup/internal/handler"
	"github.com/iliyamo/live-show-lineup/internal/middleware"
)

// Routes bundles what RegisterRoutes needs.  RateLimit may be nil.
type Routes struct {
	Health    *handler.HealthHandler
	Admin     *handler.AdminHandler
	Performer *handler.PerformerHandler
	Public    *handler.PublicHandler
	JWTSecret string
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes registers every endpoint on e.
func RegisterRoutes(e *echo.Echo, r Routes) {
	e.GET("/healthz", r.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/v1/shows/:id/lineup", r.Public.GetLineup)

	auth := middleware.JWTAuth(r.JWTSecret)

	admin := e.Group("/v1/admin", auth, middleware.RequireRole(middleware.RoleAdmin))
	admin.POST("/shows", r.Admin.CreateShow)
	admin.GET("/shows", r.Admin.ListShows)
	admin.GET("/shows/:id", r.Admin.GetShow)
	admin.POST("/shows/:id/finalists", r.Admin.DesignateFinalists)
	admin.POST("/shows/:id/confirmations", r.Admin.RequestConfirmations)
	admin.POST("/shows/:id/lock", r.Admin.LockLineup)
	admin.PUT("/shows/:id/fallback", r.Admin.SetFallbackMode)
	admin.GET("/shows/:id/audit", r.Admin.ListAudit)
	admin.POST("/penalties", r.Admin.ApplyPenalty)
	admin.GET("/users/:id/penalties", r.Admin.ListPenalties)

	// Ownership of the finalist row is checked by the lineup service.
	performer := e.Group("/v1/finalists", auth, middleware.RequireRole(middleware.RolePerformer, middleware.RoleAdmin))
	if r.RateLimit != nil {
		performer.Use(r.RateLimit)
	}
	performer.POST("/:id/confirm", r.Performer.Confirm)
	performer.POST("/:id/cancel", r.Performer.Cancel)
}
