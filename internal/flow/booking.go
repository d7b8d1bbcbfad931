package flow

import (
    "context"
    "encoding/json"
    "strings"

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
    "github.com/iliyamo/hotel-booking-web/internal/model"
)

// RoomTypeFor maps a stored room label onto the value sent to the Booking
// Service.  Unrecognized labels are rejected when strict is set and passed
// through trimmed otherwise; the second result reports which happened.
func RoomTypeFor(label string, strict bool) (string, bool, error) {
    cat, ok := model.NormalizeRoomType(label)
    if ok {
        return cat.String(), true, nil
    }
    if strict {
        return "", false, apperror.Invalid("room_type", "%q is not a bookable room category", label)
    }
    return strings.TrimSpace(label), false, nil
}

// ConfirmBooking turns the draft into a booking.  The guest is resolved
// first (when not already), then the Booking Service is called; the two
// calls never overlap.  On success the booking id and confirmed price are
// stored and payment becomes pending.  Confirming an already booked draft
// returns it unchanged.
func (f *Flow) ConfirmBooking(ctx context.Context, sessionID string) (Summary, error) {
    unlock, err := f.lock(ctx, sessionID)
    if err != nil {
        return Summary{}, err
    }
    defer unlock()

    rec, err := f.load(ctx, sessionID)
    if err != nil {
        return Summary{}, err
    }
    d := rec.draft
    if d.BookingID > 0 {
        return summarize(d), nil
    }
    if err := bookable(d); err != nil {
        return Summary{}, err
    }

    roomType, known, err := RoomTypeFor(d.RoomType, f.policy.StrictRoomTypes)
    if err != nil {
        return Summary{}, err
    }
    if !known {
        f.Logger.Warnf("session %s: room label %q matches no category, sending as is", sessionID, d.RoomType)
    }

    if d.GuestID == 0 {
        if err := f.resolveGuest(ctx, sessionID, &rec); err != nil {
            return Summary{}, err
        }
        d = rec.draft
    }

    req := model.BookingRequest{
        GuestID:  d.GuestID,
        RoomType: roomType,
        CheckIn:  model.FormatDate(ShiftDate(d.CheckIn, f.policy.DateShiftDays)),
        CheckOut: model.FormatDate(ShiftDate(d.CheckOut, f.policy.DateShiftDays)),
        Price:    json.Number(d.RoomPriceNightly.StringFixed(2)),
    }
    booking, err := f.Bookings.CreateBooking(ctx, req)
    if err != nil {
        f.Logger.Warnf("session %s: booking rejected: %v", sessionID, err)
        return Summary{}, err
    }

    d.BookingID = booking.BookingID
    d.BookedPrice = booking.Price
    d.PaymentStatus = model.PaymentPending
    rec.draft = d
    if err := f.save(ctx, sessionID, rec); err != nil {
        // The booking exists upstream; surface its id so it is not lost.
        f.Logger.Errorf("session %s: booking %d created but session save failed: %v", sessionID, booking.BookingID, err)
        return Summary{}, err
    }
    f.Logger.Infof("session %s: booking %d created for guest %d", sessionID, d.BookingID, d.GuestID)
    return summarize(d), nil
}

// bookable checks that every field the Booking Service needs is present.
func bookable(d model.Draft) error {
    switch {
    case d.RoomType == "":
        return apperror.Invalid("room_type", "choose a room first")
    case d.CheckIn.IsZero():
        return apperror.Invalid("check_in", "is required")
    case d.CheckOut.IsZero():
        return apperror.Invalid("check_out", "is required")
    case !d.HasGuestDetails():
        return apperror.Invalid("full_name", "enter guest name, email and contact number")
    case !d.RoomPriceNightly.IsPositive():
        return apperror.Invalid("price", "must be greater than zero")
    }
    return nil
}
