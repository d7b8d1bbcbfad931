package session

import (
    "context"
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-booking-web/internal/model"
)

func date(s string) time.Time {
    t, _ := time.Parse(model.DateLayout, s)
    return t
}

func TestEncodeDraft_UsesPageKeys(t *testing.T) {
    d := model.Draft{
        CheckIn:          date("2024-06-01"),
        CheckOut:         date("2024-06-03"),
        Adults:           2,
        RoomType:         "Deluxe Family Room",
        RoomPriceNightly: decimal.RequireFromString("150"),
        GuestName:        "Jane Doe",
        BookingID:        42,
        BookedPrice:      decimal.RequireFromString("300"),
        PaymentStatus:    model.PaymentPending,
    }

    fields, err := EncodeDraft(d)
    require.NoError(t, err)

    assert.Equal(t, "2024-06-01", fields[KeyCheckIn])
    assert.Equal(t, "2024-06-03", fields[KeyCheckOut])
    assert.Equal(t, "2", fields[KeyAdults])
    assert.Equal(t, "0", fields[KeyChildren])
    assert.Equal(t, "150.00", fields[KeyRoomPrice])
    assert.Equal(t, "Jane Doe", fields[KeyFullName])
    assert.JSONEq(t, `{"bookingId":42,"totalCost":"300"}`, fields[KeyBookingDetails])
    assert.Equal(t, "pending", fields[KeyPaymentStatus])
    assert.NotContains(t, fields, KeyEmail)
    assert.NotContains(t, fields, KeyGuestID)
}

func TestDecodeDraft_RestoresEncodedDraft(t *testing.T) {
    d := model.Draft{
        CheckIn:          date("2024-06-01"),
        CheckOut:         date("2024-06-03"),
        Adults:           1,
        Children:         2,
        RoomID:           7,
        RoomType:         "Single",
        RoomPriceNightly: decimal.RequireFromString("99.50"),
        RoomImage:        "images/single.jpg",
        GuestName:        "Jane Doe",
        GuestEmail:       "jane@x.com",
        GuestContact:     "+6591234567",
        GuestID:          5,
    }
    fields, err := EncodeDraft(d)
    require.NoError(t, err)
    assert.NotContains(t, fields, KeyPaymentIntent)
    assert.NotContains(t, fields, KeyPaymentAttempts)

    d.BookingID, d.BookedPrice = 9, decimal.RequireFromString("199")
    d.PaymentStatus = model.PaymentFailed
    d.PaymentIntentSecret, d.PaymentAttempts = "pi_9_secret_q", 2
    fields, err = EncodeDraft(d)
    require.NoError(t, err)

    got, err := DecodeDraft(fields)
    require.NoError(t, err)
    assert.True(t, d.RoomPriceNightly.Equal(got.RoomPriceNightly))
    assert.True(t, d.BookedPrice.Equal(got.BookedPrice))
    got.RoomPriceNightly, got.BookedPrice = d.RoomPriceNightly, d.BookedPrice
    assert.Equal(t, d, got)
    assert.Equal(t, "2", fields[KeyPaymentAttempts])
    assert.Equal(t, model.StageBooked, got.Stage())
}

func TestDecodeDraft_RejectsMalformedValue(t *testing.T) {
    _, err := DecodeDraft(map[string]string{KeyAdults: "two"})
    assert.ErrorContains(t, err, KeyAdults)

    _, err = DecodeDraft(map[string]string{KeyCheckIn: "June 1st"})
    assert.ErrorContains(t, err, KeyCheckIn)
}

func TestMemoryStore_SaveReplacesRecord(t *testing.T) {
    ctx := context.Background()
    s := NewMemoryStore()

    require.NoError(t, s.Save(ctx, "abc", map[string]string{KeyRoomType: "Single", KeyAdults: "1"}))
    require.NoError(t, s.Save(ctx, "abc", map[string]string{KeyRoomType: "Family"}))

    got, err := s.Load(ctx, "abc")
    require.NoError(t, err)
    assert.Equal(t, map[string]string{KeyRoomType: "Family"}, got)

    got["mutated"] = "yes"
    again, _ := s.Load(ctx, "abc")
    assert.NotContains(t, again, "mutated")

    require.NoError(t, s.Clear(ctx, "abc"))
    empty, err := s.Load(ctx, "abc")
    require.NoError(t, err)
    assert.NotNil(t, empty)
    assert.Empty(t, empty)
}
