package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bdticketpro/backoffice/internal/model"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{model.RoleAdmin, PermManageUsers, true},
		{model.RoleAdmin, PermViewBuyingPrice, true},
		{model.RoleAdmin, PermSystemSettings, true},
		{model.RoleManager, PermConfirmBookings, true},
		{model.RoleManager, PermViewAllBookings, true},
		{model.RoleManager, PermManageUsers, false},
		{model.RoleManager, PermViewBuyingPrice, false},
		{model.RoleStaff, PermCreateBookings, true},
		{model.RoleStaff, PermPartialPayments, true},
		{model.RoleStaff, PermConfirmBookings, false},
		{model.RoleStaff, PermViewAllBookings, false},
		{"ghost", PermViewTickets, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HasPermission(c.role, c.permission), "%s/%s", c.role, c.permission)
	}
}

func TestPermissionsFor(t *testing.T) {
	admin := PermissionsFor(model.RoleAdmin)
	assert.Len(t, admin, 11)
	assert.Contains(t, admin, PermOverrideLocks)

	staff := PermissionsFor(model.RoleStaff)
	assert.Len(t, staff, 3)

	assert.Empty(t, PermissionsFor("unknown"))
}
