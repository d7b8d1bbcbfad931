// Package session persists booking drafts between requests.  A draft is kept
// as a flat map of string keys (the same keys the page scripts used in
// browser local storage) so the stored form stays readable in redis-cli and
// adapters stay trivial.
package session

import "context"

// Store persists one flat record per session.  Save replaces the whole
// record; Load returns an empty, non-nil map for an unknown session.
type Store interface {
    Load(ctx context.Context, sessionID string) (map[string]string, error)
    Save(ctx context.Context, sessionID string, fields map[string]string) error
    Clear(ctx context.Context, sessionID string) error
}

// Keys of the stored record.
const (
    KeyCheckIn             = "checkInDate"
    KeyCheckOut            = "checkOutDate"
    KeyAdults              = "adults"
    KeyChildren            = "children"
    KeyRoomID              = "roomId"
    KeyRoomType            = "roomType"
    KeyRoomPrice           = "roomPrice"
    KeyRoomImage           = "roomImage"
    KeyFullName            = "fullName"
    KeyEmail               = "email"
    KeyPhone               = "phoneNumber"
    KeyGuestID             = "guestId"
    KeyTotalCost           = "totalCost"
    KeyBookingDetails      = "bookingDetails"
    KeyPaymentStatus       = "paymentStatus"
    KeyPaymentConfirmation = "paymentConfirmation"
    KeyPaymentIntent       = "paymentIntentSecret"
    KeyPaymentAttempts     = "paymentAttempts"
)
