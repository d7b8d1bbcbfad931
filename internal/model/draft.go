package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Stage names how far a Draft has travelled through the booking flow.  It is
// derived from which fields are populated, never stored on its own.
type Stage string

const (
    StageEmpty           Stage = "empty"
    StageSearched        Stage = "searched"
    StageRoomSelected    Stage = "room_selected"
    StageGuestIdentified Stage = "guest_identified"
    StageBooked          Stage = "booked"
    StagePaid            Stage = "paid"
)

// PaymentStatus of the draft once a booking exists.
type PaymentStatus string

const (
    PaymentPending   PaymentStatus = "pending"
    PaymentSucceeded PaymentStatus = "succeeded"
    PaymentFailed    PaymentStatus = "failed"
)

// DateLayout is the calendar-date form used in the session and on the wire.
const DateLayout = "2006-01-02"

// Draft is the in-progress booking carried between steps before (and just
// after) the Booking Service knows about it.
//
// Fields are grouped by the step that produces them:
//  search/room selection - CheckIn, CheckOut, Adults, Children, RoomID,
//                          RoomType, RoomPriceNightly, RoomImage
//  guest identification  - GuestName, GuestEmail, GuestContact, GuestID
//  booking confirmation  - BookingID, BookedPrice
//  payment               - PaymentStatus, PaymentIntentSecret, PaymentAttempts
//
// Nights and TotalCost are never read back from storage; see flow.Derive.
type Draft struct {
    CheckIn  time.Time // date only, UTC midnight; zero when unset
    CheckOut time.Time
    Adults   int
    Children int

    RoomID           int64
    RoomType         string
    RoomPriceNightly decimal.Decimal
    RoomImage        string

    GuestName    string
    GuestEmail   string
    GuestContact string
    GuestID      int64

    BookingID     int64
    BookedPrice   decimal.Decimal
    PaymentStatus PaymentStatus

    // PaymentIntentSecret is the client secret of the intent created for
    // BookingID.  Retries confirm the same intent instead of creating another.
    PaymentIntentSecret string
    // PaymentAttempts counts confirmations the processor answered without
    // capturing the payment.
    PaymentAttempts int
}

// Stage reports the furthest step the draft has completed.
func (d Draft) Stage() Stage {
    switch {
    case d.PaymentStatus == PaymentSucceeded:
        return StagePaid
    case d.BookingID > 0:
        return StageBooked
    case d.GuestID > 0:
        return StageGuestIdentified
    case d.RoomType != "":
        return StageRoomSelected
    case !d.CheckIn.IsZero() || !d.CheckOut.IsZero():
        return StageSearched
    }
    return StageEmpty
}

// HasGuestDetails reports whether the contact triple has been collected.
func (d Draft) HasGuestDetails() bool {
    return d.GuestName != "" && d.GuestEmail != "" && d.GuestContact != ""
}

// ParseDate accepts a calendar date (YYYY-MM-DD) or a full RFC 3339
// timestamp and returns the date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
    if t, err := time.Parse(DateLayout, s); err == nil {
        return t, nil
    }
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        return time.Time{}, err
    }
    return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders a date in calendar form; the zero time renders empty.
func FormatDate(t time.Time) string {
    if t.IsZero() {
        return ""
    }
    return t.Format(DateLayout)
}
