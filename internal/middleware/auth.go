// Package middleware provides the request processing shared by all API
// routes: bearer authentication, permission gates, rate limiting and
// request logging.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/repository"
	"github.com/bdticketpro/backoffice/internal/utils"
)

const userContextKey = "auth_user"

// JWTAuth validates the Bearer token, loads the account behind it and
// stores it in the request context. Tokens for deleted or deactivated
// accounts are rejected so a revoked user loses access before the token
// expires.
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "Access denied. No token provided.",
				})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "Invalid token.",
				})
			}

			user, err := users.GetByID(c.Request().Context(), claims.UserID)
			if err != nil || user.Status != model.UserActive {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "message": "Invalid token.",
				})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user stored by JWTAuth, or nil
// on unauthenticated routes.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}
