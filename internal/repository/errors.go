// Package repository defines the booking store contract and its adapters
// along with sentinel errors shared across the data access layer.  The
// sentinels let handlers translate failures into stable HTTP responses
// without inspecting driver internals.
package repository

import "errors"

// ErrNotFound is returned when a booking, car or user does not exist.
// Handlers translate this into a 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// booking owned by someone else.  Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert would violate the admission
// invariant: another non-cancelled booking of the same car overlaps the
// requested date range.  The check happens at commit time, so a conflict
// may be reported even when an earlier availability read looked clear.
// Handlers translate this into 409.
var ErrConflict = errors.New("dates conflict with an existing booking")

// ErrEmailExists is returned when registering a user with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")
