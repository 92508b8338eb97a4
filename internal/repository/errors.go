// Package repository implements raw-SQL data access for the campus
// backend. This file defines sentinel errors shared across the
// repositories so that handlers can translate failure scenarios into
// distinct HTTP responses with errors.Is comparisons: not-found ->
// 404, forbidden -> 403, conflict -> 409.
package repository

import "errors"

// ErrVenueNotFound is returned when a venue id does not exist or the
// venue has been deactivated and the operation requires an active one.
var ErrVenueNotFound = errors.New("venue not found")

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when no user matches the given email,
// id or reset token.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when creating a user with an email that
// is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, such as cancelling someone else's booking
// without the admin role.
var ErrForbidden = errors.New("forbidden")

// ErrBookingConflict is returned when a booking cannot be created
// because a confirmed booking already occupies an overlapping window
// on the same venue and date.
var ErrBookingConflict = errors.New("booking conflict")
