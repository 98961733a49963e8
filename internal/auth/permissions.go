// Package auth holds the static role-to-permission tables. Authorization
// in this system is a plain set-membership test: each of the three roles
// carries a fixed list of capability tags and there is no inheritance or
// per-resource ACL beyond "a booking's creator may act on it".
package auth

import "github.com/bdticketpro/backoffice/internal/model"

// Capability tags checked by handlers and middleware.
const (
	PermViewBuyingPrice = "view_buying_price"
	PermEditBatches     = "edit_batches"
	PermDeleteBatches   = "delete_batches"
	PermCreateBatches   = "create_batches"
	PermViewProfit      = "view_profit"
	PermOverrideLocks   = "override_locks"
	PermManageUsers     = "manage_users"
	PermViewAllBookings = "view_all_bookings"
	PermConfirmBookings = "confirm_bookings"
	PermConfirmSales    = "confirm_sales"
	PermSystemSettings  = "system_settings"
	PermViewTickets     = "view_tickets"
	PermCreateBookings  = "create_bookings"
	PermPartialPayments = "partial_payments"
)

// permissions maps each role to its capability set. The map is built
// once at init and never mutated afterwards.
var permissions = map[string]map[string]bool{
	model.RoleAdmin: toSet(
		PermViewBuyingPrice,
		PermEditBatches,
		PermDeleteBatches,
		PermCreateBatches,
		PermViewProfit,
		PermOverrideLocks,
		PermManageUsers,
		PermViewAllBookings,
		PermConfirmBookings,
		PermConfirmSales,
		PermSystemSettings,
	),
	model.RoleManager: toSet(
		PermViewTickets,
		PermCreateBookings,
		PermConfirmBookings,
		PermConfirmSales,
		PermViewAllBookings,
	),
	model.RoleStaff: toSet(
		PermViewTickets,
		PermCreateBookings,
		PermPartialPayments,
	),
}

func toSet(perms ...string) map[string]bool {
	s := make(map[string]bool, len(perms))
	for _, p := range perms {
		s[p] = true
	}
	return s
}

// HasPermission reports whether the role carries the given capability.
// Unknown roles have no capabilities.
func HasPermission(role, permission string) bool {
	return permissions[role][permission]
}

// PermissionsFor returns a copy of the role's capability list, useful
// for exposing the effective permissions to the client.
func PermissionsFor(role string) []string {
	set := permissions[role]
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}
