package router

import (
	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/handler"
	"github.com/bigdrops/admin-portal/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff session endpoints.  Login, refresh and
// logout are unauthenticated (logout accepts either a refresh token body or
// a bearer token); /api/auth/me requires a valid access token.  Login is
// rate limited per IP when a limiter is supplied, on top of the per-account
// lockout inside the handler.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if limiter != nil {
		g.POST("/login", a.Login, limiter)
	} else {
		g.POST("/login", a.Login)
	}
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	me := e.Group("/api/auth")
	me.Use(middleware.JWTAuth(jwtSecret))
	me.GET("/me", a.Me)
}
