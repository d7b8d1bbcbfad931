package flow

import (
    "fmt"
    "math"
    "time"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-web/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Nights is the number of nights charged for a stay: the day difference
// rounded up, and never less than one.  A same-day, inverted or incomplete
// range is charged as one night.
func Nights(checkIn, checkOut time.Time) int {
    if checkIn.IsZero() || checkOut.IsZero() {
        return 1
    }
    diff := checkOut.Sub(checkIn)
    if diff <= 0 {
        return 1
    }
    n := int(math.Ceil(diff.Hours() / 24))
    if n < 1 {
        return 1
    }
    return n
}

// TotalCost is the nightly price times the nights, rounded to cents.
func TotalCost(nightly decimal.Decimal, nights int) decimal.Decimal {
    return nightly.Mul(decimal.NewFromInt(int64(nights))).Round(2)
}

// MinorUnits converts a major-unit amount to the integer minor units the
// payment processor expects.
func MinorUnits(amount decimal.Decimal) int64 {
    return amount.Mul(hundred).Round(0).IntPart()
}

// Derive recomputes nights and total from the draft's own inputs.  Stored
// totals are never consulted.
func Derive(d model.Draft) (int, decimal.Decimal) {
    n := Nights(d.CheckIn, d.CheckOut)
    return n, TotalCost(d.RoomPriceNightly, n)
}

// ShiftDate moves a calendar date by whole days.
func ShiftDate(t time.Time, days int) time.Time {
    if days == 0 || t.IsZero() {
        return t
    }
    return t.AddDate(0, 0, days)
}

// GuestLabel renders the party size the way the summary page shows it.
func GuestLabel(adults, children int) string {
    return fmt.Sprintf("%d Adults, %d Children", adults, children)
}
