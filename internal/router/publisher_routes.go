package router

import (
	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/handler"
	"github.com/bigdrops/admin-portal/internal/middleware"
	"github.com/bigdrops/admin-portal/internal/model"
)

// RegisterPublishers wires the staff-facing publisher CRUD.  It shares the
// /api/publishers prefix with the public onboarding form but every route
// here requires a staff token: listing needs VIEW_ANALYTICS, writes need
// MANAGE_PUBLISHERS.
func RegisterPublishers(e *echo.Echo, p *handler.PublisherHandler, jwtSecret string) {
	g := e.Group("/api/publishers")
	g.Use(middleware.JWTAuth(jwtSecret))

	reads := g.Group("", middleware.RequirePermission(model.PermViewAnalytics))
	reads.GET("", p.List)
	reads.GET("/:id", p.Get)

	writes := g.Group("", middleware.RequirePermission(model.PermManagePublishers))
	writes.POST("", p.Create)
	writes.PUT("/:id", p.Update)
	writes.DELETE("/:id", p.Delete)
}
