package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdticketpro/backoffice/internal/auth"
	"github.com/bdticketpro/backoffice/internal/model"
)

func invokeWithRole(t *testing.T, role string, permission string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(userContextKey, &model.User{ID: "u1", Username: "tester", Role: role})
	}

	reached := false
	h := RequirePermission(permission)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, reached
}

func TestRequirePermission(t *testing.T) {
	rec, reached := invokeWithRole(t, model.RoleAdmin, auth.PermManageUsers)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, reached = invokeWithRole(t, model.RoleStaff, auth.PermManageUsers)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient permissions.")

	rec, reached = invokeWithRole(t, "", auth.PermViewTickets)
	assert.False(t, reached)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCurrentUserMissing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, CurrentUser(c))
}
