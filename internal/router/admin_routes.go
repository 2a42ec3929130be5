package router

import (
	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/handler"
	"github.com/bigdrops/admin-portal/internal/middleware"
	"github.com/bigdrops/admin-portal/internal/model"
)

// RegisterAdvertisers wires advertiser CRUD and the Everflow pull endpoint.
// Listing needs VIEW_ANALYTICS; every write needs MANAGE_OFFERS.
func RegisterAdvertisers(e *echo.Echo, a *handler.AdvertiserHandler, jwtSecret string) {
	g := e.Group("/api/advertisers")
	g.Use(middleware.JWTAuth(jwtSecret))

	reads := g.Group("", middleware.RequirePermission(model.PermViewAnalytics))
	reads.GET("", a.List)
	reads.GET("/:id", a.Get)

	writes := g.Group("", middleware.RequirePermission(model.PermManageOffers))
	writes.POST("", a.Create)
	writes.PUT("/:id", a.Update)
	writes.DELETE("/:id", a.Delete)
	writes.POST("/pull", a.Pull)
}

// RegisterUsers wires staff account management behind MANAGE_USERS.
func RegisterUsers(e *echo.Echo, u *handler.UserAdminHandler, jwtSecret string) {
	g := e.Group("/api/users")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequirePermission(model.PermManageUsers))

	g.GET("", u.List)
	g.POST("", u.Create)
	g.PUT("/:id", u.Update)
	g.DELETE("/:id", u.Delete)
}
