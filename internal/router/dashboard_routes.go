package router

import (
	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/handler"
	"github.com/bigdrops/admin-portal/internal/middleware"
	"github.com/bigdrops/admin-portal/internal/model"
)

// RegisterDashboard wires the request review and metrics endpoints.  Reads
// require VIEW_ANALYTICS, approve/reject require MANAGE_PUBLISHERS.  The
// optional cache middleware is applied to the metrics reads only; request
// lists must always reflect the latest decisions.
func RegisterDashboard(e *echo.Echo, d *handler.DashboardHandler, m *handler.MetricsHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api/dashboard")
	g.Use(middleware.JWTAuth(jwtSecret))

	reads := g.Group("", middleware.RequirePermission(model.PermViewAnalytics))
	reads.GET("/requests", d.List)
	reads.GET("/requests/:id", d.Detail)

	metrics := g.Group("", middleware.RequirePermission(model.PermViewAnalytics))
	if cache != nil {
		metrics.Use(cache)
	}
	metrics.GET("/metrics", m.Overview)
	metrics.GET("/submissions-trend", m.SubmissionsTrend)

	decisions := g.Group("", middleware.RequirePermission(model.PermManagePublishers))
	decisions.POST("/requests/:id/approve", d.Approve)
	decisions.POST("/requests/:id/reject", d.Reject)
}
