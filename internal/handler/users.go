package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/middleware"
	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/repository"
	"github.com/bdticketpro/backoffice/internal/utils"
)

// UserHandler serves account administration and the self-service
// profile endpoints. Admin routes are gated by manage_users in the
// router.
type UserHandler struct {
	Users      *repository.UserRepo
	Activity   *repository.ActivityRepo
	Log        *logrus.Logger
	BcryptCost int
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users *repository.UserRepo, activity *repository.ActivityRepo,
	log *logrus.Logger, bcryptCost int) *UserHandler {
	return &UserHandler{Users: users, Activity: activity, Log: log, BcryptCost: bcryptCost}
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Users retrieved successfully", echo.Map{
		"users": users,
		"total": len(users),
	})
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.Users.GetByID(c.Request().Context(), c.Param("id"))
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "User not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "User retrieved successfully", echo.Map{"user": user})
}

type userRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"`
	Status   string  `json:"status"`
}

// Create handles POST /api/users.
func (h *UserHandler) Create(c echo.Context) error {
	var body userRequest
	if err := c.Bind(&body); err != nil {
		return failValidation(c, "Validation error", echo.Map{"body": "invalid JSON"})
	}
	errs := map[string]string{}
	if body.Username == "" {
		errs["username"] = "Username is required"
	}
	if body.Name == "" {
		errs["name"] = "Name is required"
	}
	if !model.ValidRole(body.Role) {
		errs["role"] = "Role must be admin, manager or staff"
	}
	if len(errs) > 0 {
		return failValidation(c, "Validation error", errs)
	}

	hash, err := utils.HashPassword(body.Password, h.BcryptCost)
	if err == utils.ErrPasswordTooShort {
		return failValidation(c, "Validation error", echo.Map{"password": err.Error()})
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	status := body.Status
	if status == "" {
		status = model.UserActive
	}
	if !model.ValidUserStatus(status) {
		return failValidation(c, "Validation error", echo.Map{"status": "Status must be active or inactive"})
	}

	user := model.User{
		Username:     body.Username,
		PasswordHash: hash,
		Name:         body.Name,
		Email:        body.Email,
		Phone:        body.Phone,
		Role:         body.Role,
		Status:       status,
	}
	ctx := c.Request().Context()
	if err := h.Users.Create(ctx, &user); err != nil {
		if err == repository.ErrUsernameExists {
			return fail(c, http.StatusBadRequest, "Username already exists")
		}
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	actor := middleware.CurrentUser(c)
	logActivity(c, h.Activity, h.Log, actor.ID, "create_user", "user", user.ID, map[string]any{
		"username": user.Username,
		"role":     user.Role,
	})
	return respond(c, http.StatusCreated, "User created successfully", echo.Map{"user": user})
}

// Update handles PUT /api/users/:id. Admins cannot demote their own
// role; that would lock the last admin out mid-session.
func (h *UserHandler) Update(c echo.Context) error {
	var body userRequest
	if err := c.Bind(&body); err != nil {
		return failValidation(c, "Validation error", echo.Map{"body": "invalid JSON"})
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	user, err := h.Users.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "User not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	actor := middleware.CurrentUser(c)
	if actor.ID == id && body.Role != "" && body.Role != model.RoleAdmin && actor.Role == model.RoleAdmin {
		return fail(c, http.StatusBadRequest, "Cannot change your own admin role")
	}

	if body.Username != "" {
		user.Username = body.Username
	}
	if body.Name != "" {
		user.Name = body.Name
	}
	if body.Email != nil {
		user.Email = body.Email
	}
	if body.Phone != nil {
		user.Phone = body.Phone
	}
	if body.Role != "" {
		if !model.ValidRole(body.Role) {
			return failValidation(c, "Validation error", echo.Map{"role": "Role must be admin, manager or staff"})
		}
		user.Role = body.Role
	}
	if body.Status != "" {
		if !model.ValidUserStatus(body.Status) {
			return failValidation(c, "Validation error", echo.Map{"status": "Status must be active or inactive"})
		}
		user.Status = body.Status
	}

	if err := h.Users.Update(ctx, user); err != nil {
		if err == repository.ErrUsernameExists {
			return fail(c, http.StatusBadRequest, "Username already exists")
		}
		return fail(c, http.StatusInternalServerError, "Failed to update user")
	}
	if body.Password != "" {
		hash, err := utils.HashPassword(body.Password, h.BcryptCost)
		if err == utils.ErrPasswordTooShort {
			return failValidation(c, "Validation error", echo.Map{"password": err.Error()})
		}
		if err != nil {
			return fail(c, http.StatusInternalServerError, "Internal server error")
		}
		if err := h.Users.UpdatePassword(ctx, id, hash); err != nil {
			return fail(c, http.StatusInternalServerError, "Failed to update user")
		}
	}

	logActivity(c, h.Activity, h.Log, actor.ID, "update_user", "user", id, nil)
	return respond(c, http.StatusOK, "User updated successfully", echo.Map{"user": user})
}

// Delete handles DELETE /api/users/:id. Deleting your own account is
// refused.
func (h *UserHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	actor := middleware.CurrentUser(c)
	if actor.ID == id {
		return fail(c, http.StatusBadRequest, "Cannot delete your own account")
	}

	err := h.Users.Delete(c.Request().Context(), id)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "User not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to delete user")
	}

	logActivity(c, h.Activity, h.Log, actor.ID, "delete_user", "user", id, nil)
	return respond(c, http.StatusOK, "User deleted successfully", nil)
}

// UpdateProfile handles PUT /api/users/profile/me.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var body struct {
		Name  string  `json:"name"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
	}
	if err := c.Bind(&body); err != nil {
		return failValidation(c, "Validation error", echo.Map{"body": "invalid JSON"})
	}
	if body.Name == "" {
		return failValidation(c, "Validation error", echo.Map{"name": "Name is required"})
	}

	user := middleware.CurrentUser(c)
	if err := h.Users.UpdateProfile(c.Request().Context(), user.ID, body.Name, body.Email, body.Phone); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update profile")
	}

	logActivity(c, h.Activity, h.Log, user.ID, "update_profile", "user", user.ID, nil)
	return respond(c, http.StatusOK, "Profile updated successfully", nil)
}

// UpdatePassword handles PUT /api/users/profile/password. The current
// password is verified before the new one is stored.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.Bind(&body); err != nil {
		return failValidation(c, "Validation error", echo.Map{"body": "invalid JSON"})
	}
	if body.ConfirmPassword != "" && body.NewPassword != body.ConfirmPassword {
		return failValidation(c, "Validation error", echo.Map{"confirmPassword": "Passwords don't match"})
	}

	user := middleware.CurrentUser(c)
	if !utils.VerifyPassword(user.PasswordHash, body.CurrentPassword) {
		return fail(c, http.StatusBadRequest, "Current password is incorrect")
	}

	hash, err := utils.HashPassword(body.NewPassword, h.BcryptCost)
	if err == utils.ErrPasswordTooShort {
		return failValidation(c, "Validation error", echo.Map{"newPassword": err.Error()})
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	if err := h.Users.UpdatePassword(c.Request().Context(), user.ID, hash); err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	logActivity(c, h.Activity, h.Log, user.ID, "update_password", "user", user.ID, nil)
	return respond(c, http.StatusOK, "Password updated successfully", nil)
}
