package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/model"
)

// RequirePermission returns a middleware that enforces that the
// authenticated user's role holds the given permission according to
// model.RolePermissions.  It assumes JWTAuth ran earlier and stored the
// role claim under "role".  Missing or unknown roles are rejected with 403.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !model.Can(role, permission) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
