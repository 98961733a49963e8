package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/auth"
	"github.com/bdticketpro/backoffice/internal/middleware"
	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/repository"
	"github.com/bdticketpro/backoffice/internal/utils"
)

// AuthHandler serves login, session introspection and logout.
type AuthHandler struct {
	Users    *repository.UserRepo
	Activity *repository.ActivityRepo
	Log      *logrus.Logger
	Secret   string
	TokenTTL time.Duration
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *repository.UserRepo, activity *repository.ActivityRepo,
	log *logrus.Logger, secret string, ttl time.Duration) *AuthHandler {
	return &AuthHandler{Users: users, Activity: activity, Log: log, Secret: secret, TokenTTL: ttl}
}

// Login handles POST /api/auth/login. Credential and account-state
// failures all map to 401 with messages that do not reveal whether the
// username exists.
func (h *AuthHandler) Login(c echo.Context) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return failValidation(c, "Validation error", echo.Map{"body": "invalid JSON"})
	}
	if body.Username == "" || body.Password == "" {
		return failValidation(c, "Validation error", echo.Map{
			"username": "required", "password": "required",
		})
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByUsername(ctx, body.Username)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	if user.Status != model.UserActive {
		return fail(c, http.StatusUnauthorized, "Account is inactive")
	}
	if !utils.VerifyPassword(user.PasswordHash, body.Password) {
		return fail(c, http.StatusUnauthorized, "Invalid username or password")
	}

	now := time.Now().UTC()
	if err := h.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		h.Log.WithError(err).Warn("last_login update failed")
	}
	user.LastLogin = &now

	token, err := utils.NewToken(h.Secret, user.ID, user.Username, user.Role, h.TokenTTL)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	logActivity(c, h.Activity, h.Log, user.ID, "login", "user", user.ID, nil)

	return respond(c, http.StatusOK, "Login successful", echo.Map{
		"user":        user,
		"token":       token,
		"permissions": auth.PermissionsFor(user.Role),
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	return respond(c, http.StatusOK, "User profile retrieved", echo.Map{
		"user":        user,
		"permissions": auth.PermissionsFor(user.Role),
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so this
// only acknowledges and records the logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	if user := middleware.CurrentUser(c); user != nil {
		logActivity(c, h.Activity, h.Log, user.ID, "logout", "user", user.ID, nil)
	}
	return respond(c, http.StatusOK, "Logout successful", nil)
}
