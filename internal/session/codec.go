package session

import (
    "encoding/json"
    "fmt"
    "strconv"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-web/internal/model"
)

// EncodeDraft flattens a draft into store keys.  Unset fields are omitted.
// Derived values (nights, totalCost) are not part of the draft and are added
// by the caller when wanted.
func EncodeDraft(d model.Draft) (map[string]string, error) {
    out := map[string]string{}
    put := func(k, v string) {
        if v != "" {
            out[k] = v
        }
    }
    putInt := func(k string, v int64, keepZero bool) {
        if v != 0 || keepZero {
            out[k] = strconv.FormatInt(v, 10)
        }
    }

    put(KeyCheckIn, model.FormatDate(d.CheckIn))
    put(KeyCheckOut, model.FormatDate(d.CheckOut))
    if !d.CheckIn.IsZero() || d.Adults != 0 {
        putInt(KeyAdults, int64(d.Adults), true)
        putInt(KeyChildren, int64(d.Children), true)
    }
    putInt(KeyRoomID, d.RoomID, false)
    put(KeyRoomType, d.RoomType)
    if d.RoomType != "" {
        out[KeyRoomPrice] = d.RoomPriceNightly.StringFixed(2)
    }
    put(KeyRoomImage, d.RoomImage)

    put(KeyFullName, d.GuestName)
    put(KeyEmail, d.GuestEmail)
    put(KeyPhone, d.GuestContact)
    putInt(KeyGuestID, d.GuestID, false)

    if d.BookingID > 0 {
        bs, err := json.Marshal(model.BookingDetails{BookingID: d.BookingID, TotalCost: d.BookedPrice})
        if err != nil {
            return nil, fmt.Errorf("encode booking details: %w", err)
        }
        out[KeyBookingDetails] = string(bs)
    }
    put(KeyPaymentStatus, string(d.PaymentStatus))
    put(KeyPaymentIntent, d.PaymentIntentSecret)
    putInt(KeyPaymentAttempts, int64(d.PaymentAttempts), false)
    return out, nil
}

// DecodeDraft rebuilds a draft from store keys.  A malformed value is an
// error rather than a silent zero so a corrupted record is noticed.
func DecodeDraft(fields map[string]string) (model.Draft, error) {
    var d model.Draft
    var err error

    if v := fields[KeyCheckIn]; v != "" {
        if d.CheckIn, err = model.ParseDate(v); err != nil {
            return d, fmt.Errorf("decode %s: %w", KeyCheckIn, err)
        }
    }
    if v := fields[KeyCheckOut]; v != "" {
        if d.CheckOut, err = model.ParseDate(v); err != nil {
            return d, fmt.Errorf("decode %s: %w", KeyCheckOut, err)
        }
    }
    if d.Adults, err = atoi(fields, KeyAdults); err != nil {
        return d, err
    }
    if d.Children, err = atoi(fields, KeyChildren); err != nil {
        return d, err
    }
    if d.RoomID, err = atoi64(fields, KeyRoomID); err != nil {
        return d, err
    }
    d.RoomType = fields[KeyRoomType]
    if v := fields[KeyRoomPrice]; v != "" {
        if d.RoomPriceNightly, err = decimal.NewFromString(v); err != nil {
            return d, fmt.Errorf("decode %s: %w", KeyRoomPrice, err)
        }
    }
    d.RoomImage = fields[KeyRoomImage]

    d.GuestName = fields[KeyFullName]
    d.GuestEmail = fields[KeyEmail]
    d.GuestContact = fields[KeyPhone]
    if d.GuestID, err = atoi64(fields, KeyGuestID); err != nil {
        return d, err
    }

    if v := fields[KeyBookingDetails]; v != "" {
        var bd model.BookingDetails
        if err := json.Unmarshal([]byte(v), &bd); err != nil {
            return d, fmt.Errorf("decode %s: %w", KeyBookingDetails, err)
        }
        d.BookingID = bd.BookingID
        d.BookedPrice = bd.TotalCost
    }
    d.PaymentStatus = model.PaymentStatus(fields[KeyPaymentStatus])
    d.PaymentIntentSecret = fields[KeyPaymentIntent]
    if d.PaymentAttempts, err = atoi(fields, KeyPaymentAttempts); err != nil {
        return d, err
    }
    return d, nil
}

func atoi(fields map[string]string, key string) (int, error) {
    n, err := atoi64(fields, key)
    return int(n), err
}

func atoi64(fields map[string]string, key string) (int64, error) {
    v := fields[key]
    if v == "" {
        return 0, nil
    }
    n, err := strconv.ParseInt(v, 10, 64)
    if err != nil {
        return 0, fmt.Errorf("decode %s: %w", key, err)
    }
    return n, nil
}
