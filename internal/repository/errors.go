// Package repository implements data access on top of database/sql.
// Sentinel errors let handlers map repository failures to HTTP status
// codes without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a row the caller asked for does not
// exist. Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrTicketUnavailable is returned when a booking targets a ticket that
// is no longer in the available state. Handlers translate it into an
// HTTP 400 with a stable message.
var ErrTicketUnavailable = errors.New("ticket is not available for booking")

// ErrUsernameExists is returned when creating or renaming a user to a
// username already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrConflict is returned when state forbids the operation, such as
// deleting a batch that still has sold tickets.
var ErrConflict = errors.New("conflict")
