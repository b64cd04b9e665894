// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrVersionConflict indicates that a guest row was changed
// by someone else between read and write, while ErrCapacityExceeded
// signals that a transport schedule has no free seats left for a
// reassignment.
package repository

import "errors"

// ErrNotFound is returned when the requested record does not exist or
// has been soft-deleted. Handlers should translate this into an HTTP
// 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when inserting or updating a guest
// would violate the unique email constraint. Handlers should translate
// this into an HTTP 422 response carrying the offending address.
var ErrDuplicateEmail = errors.New("duplicate email")

// ErrVersionConflict is returned when an update carries a stale
// version number, meaning the row was modified concurrently since it
// was read. Handlers should translate this into an HTTP 409 response
// so the caller can re-read and retry.
var ErrVersionConflict = errors.New("version conflict")

// ErrCapacityExceeded is returned when an assignment would push a
// transport schedule past its vehicle capacity. Handlers should
// translate this into an HTTP 409 response.
var ErrCapacityExceeded = errors.New("capacity exceeded")
