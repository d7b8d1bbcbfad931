package model

import (
    "encoding/json"
    "time"

    "github.com/shopspring/decimal"
)

// BookingRequest is the body of the Booking Service's create operation.
// Dates are calendar dates after the configured submission shift.
//
// Fields:
//  GuestID: identifier resolved by guest find-or-create.
//  RoomType: canonical category name (or the raw label when passthrough is allowed).
//  CheckIn: YYYY-MM-DD.
//  CheckOut: YYYY-MM-DD.
//  Price: nightly price quoted at selection time, sent as a JSON number.
type BookingRequest struct {
    GuestID  int64       `json:"guest_id"`
    RoomType string      `json:"room_type"`
    CheckIn  string      `json:"check_in"`
    CheckOut string      `json:"check_out"`
    Price    json.Number `json:"price"`
}

// Booking is the payload returned under "data" by the Booking Service.
type Booking struct {
    BookingID int64           `json:"booking_id"`
    GuestID   int64           `json:"guest_id,omitempty"`
    RoomType  string          `json:"room_type,omitempty"`
    CheckIn   string          `json:"check_in,omitempty"`
    CheckOut  string          `json:"check_out,omitempty"`
    Price     decimal.Decimal `json:"price"`
    Status    string          `json:"status,omitempty"`
}

// BookingDetails is what the confirmation step keeps in the session once the
// Booking Service has accepted the draft.
type BookingDetails struct {
    BookingID int64           `json:"bookingId"`
    TotalCost decimal.Decimal `json:"totalCost"`
}

// Confirmation is the local record written when payment succeeds.
//
// Fields:
//  BookingID: booking the payment settles.
//  Amount: major-unit amount charged.
//  AmountMinor: the same amount in minor units as sent to the processor.
//  Currency: ISO currency code.
//  PaymentIntentID: processor reference for the captured intent.
//  GuestEmail: billing email.
//  PaidAt: UTC timestamp of confirmation.
type Confirmation struct {
    BookingID       int64           `json:"bookingId"`
    Amount          decimal.Decimal `json:"amount"`
    AmountMinor     int64           `json:"amountMinor"`
    Currency        string          `json:"currency"`
    PaymentIntentID string          `json:"paymentIntentId"`
    GuestEmail      string          `json:"guestEmail,omitempty"`
    PaidAt          time.Time       `json:"paidAt"`
}
