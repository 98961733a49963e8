package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bdticketpro/backoffice/internal/auth"
)

// RequirePermission aborts with 403 unless the authenticated user's
// role carries the given capability. It must run after JWTAuth.
func RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil || !auth.HasPermission(user.Role, permission) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false, "message": "Insufficient permissions.",
				})
			}
			return next(c)
		}
	}
}
