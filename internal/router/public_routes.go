package router

import (
	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/handler"
)

// RegisterPublic wires the two unauthenticated submission entry points.
// The onboarding form is open but rate limited per IP; the webhook carries
// its own bearer token check inside the handler.  The limiter middleware is
// optional so the server still boots when rate limiting is disabled.
func RegisterPublic(e *echo.Echo, o *handler.OnboardHandler, limiter echo.MiddlewareFunc) {
	onboard := e.Group("/api/publishers")
	if limiter != nil {
		onboard.Use(limiter)
	}
	onboard.POST("/onboard", o.Onboard)

	e.POST("/api/webhooks/secure", o.Webhook)
}
