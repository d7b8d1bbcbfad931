// Package repository persists what the booking service owns itself: the
// local record of each paid booking.  Bookings, guests and rooms live in the
// backend services and are never stored here.
package repository

import "errors"

// ErrConfirmationNotFound is returned when no confirmation exists for the
// requested booking.  Handlers should translate this into an HTTP 404.
var ErrConfirmationNotFound = errors.New("confirmation not found")
