package model

import "time"

// User roles are a closed set; every role maps to a static permission
// list in the auth package.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// User account statuses.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User mirrors the `users` table. PasswordHash is never serialized; the
// json:"-" tag keeps it out of every envelope even when a handler returns
// the struct directly.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ValidRole reports whether s is one of the three known roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleManager || s == RoleStaff
}

// ValidUserStatus reports whether s is a known account status.
func ValidUserStatus(s string) bool {
	return s == UserActive || s == UserInactive
}
