// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedQueue is the durable queue carrying BookingConfirmedEvent.
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is published once payment for a booking succeeds.
// It carries enough for downstream consumers to log or notify the guest
// without calling back into the booking services.
type BookingConfirmedEvent struct {
    BookingID        int64  `json:"booking_id"`
    GuestID          int64  `json:"guest_id"`
    GuestName        string `json:"guest_name"`
    GuestEmail       string `json:"guest_email"`
    GuestContact     string `json:"guest_contact,omitempty"`
    RoomType         string `json:"room_type"`
    CheckIn          string `json:"check_in"`
    CheckOut         string `json:"check_out"`
    Nights           int    `json:"nights"`
    TotalAmountCents int64  `json:"total_amount_cents"`
    Currency         string `json:"currency"`
    PaymentIntentID  string `json:"payment_intent_id"`
    ConfirmedAt      string `json:"confirmed_at"`
}
