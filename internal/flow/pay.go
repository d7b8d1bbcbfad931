package flow

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
    "github.com/iliyamo/hotel-booking-web/internal/model"
    "github.com/iliyamo/hotel-booking-web/internal/queue"
    "github.com/iliyamo/hotel-booking-web/internal/utils"
)

// PaymentDetails is the payment form.  Instrument is the token produced by
// the processor's payment element in the page.  Billing name and email
// default to the guest's.
type PaymentDetails struct {
    Instrument   string `json:"payment_method" validate:"required"`
    BillingName  string `json:"billing_name"`
    BillingEmail string `json:"billing_email" validate:"omitempty,email"`
}

// Pay charges the recomputed total for the session's booking: it creates a
// payment intent and confirms it with the instrument.  Only a "succeeded"
// intent completes the booking.  Any failure marks the payment failed and
// keeps the booking and draft, so payment alone can be retried.  Retries
// confirm the intent already created for the booking.
func (f *Flow) Pay(ctx context.Context, sessionID string, p PaymentDetails) (model.Confirmation, error) {
    p.Instrument = strings.TrimSpace(p.Instrument)
    if err := utils.Validate(p); err != nil {
        return model.Confirmation{}, err
    }

    unlock, err := f.lock(ctx, sessionID)
    if err != nil {
        return model.Confirmation{}, err
    }
    s, err := f.settle(ctx, sessionID, p)
    unlock()
    if err != nil {
        return model.Confirmation{}, err
    }
    if s.fresh {
        f.afterPayment(ctx, sessionID, s.draft, s.nights, s.conf)
    }
    return s.conf, nil
}

// settlement is the outcome of a successful settle.  fresh is false when the
// booking had already been paid by an earlier request.
type settlement struct {
    conf   model.Confirmation
    draft  model.Draft
    nights int
    fresh  bool
}

// settle runs the payment with the session lock held.
func (f *Flow) settle(ctx context.Context, sessionID string, p PaymentDetails) (settlement, error) {
    rec, err := f.load(ctx, sessionID)
    if err != nil {
        return settlement{}, err
    }
    d := rec.draft
    if d.PaymentStatus == model.PaymentSucceeded && rec.confirmation != nil {
        return settlement{conf: *rec.confirmation, draft: d}, nil
    }
    if d.BookingID == 0 {
        return settlement{}, apperror.Invalid("booking_id", "confirm the booking before paying")
    }

    nights, total := Derive(d)
    amount := MinorUnits(total)
    if amount <= 0 {
        return settlement{}, apperror.Invalid("total_cost", "must be greater than zero")
    }
    billing := model.BillingDetails{Name: strings.TrimSpace(p.BillingName), Email: strings.TrimSpace(p.BillingEmail)}
    if billing.Name == "" {
        billing.Name = d.GuestName
    }
    if billing.Email == "" {
        billing.Email = d.GuestEmail
    }

    if rec.draft.PaymentIntentSecret == "" {
        created, err := f.Payments.CreateIntent(ctx, model.IntentRequest{
            Amount:      amount,
            Currency:    f.policy.Currency,
            Description: d.RoomType,
        })
        if err != nil {
            return settlement{}, f.paymentFailed(ctx, sessionID, rec, err)
        }
        rec.draft.PaymentIntentSecret = created.ClientSecret
        if err := f.save(ctx, sessionID, rec); err != nil {
            return settlement{}, err
        }
    }

    secret := rec.draft.PaymentIntentSecret
    key := ConfirmKey(d.BookingID, secret, p.Instrument, rec.draft.PaymentAttempts)
    intent, err := f.Payments.ConfirmIntent(ctx, secret, p.Instrument, billing, key)
    if err == nil && intent.Status != model.IntentSucceeded {
        err = &apperror.PaymentError{
            Stage:  apperror.StageConfirm,
            Status: http.StatusPaymentRequired,
            Detail: fmt.Sprintf("payment not completed (status %s)", intent.Status),
        }
    }
    if err != nil {
        var pe *apperror.PaymentError
        if errors.As(err, &pe) && pe.Status >= http.StatusBadRequest {
            rec.draft.PaymentAttempts++
        }
        return settlement{}, f.paymentFailed(ctx, sessionID, rec, err)
    }

    conf := model.Confirmation{
        BookingID:       d.BookingID,
        Amount:          total,
        AmountMinor:     amount,
        Currency:        f.policy.Currency,
        PaymentIntentID: intent.ID,
        GuestEmail:      billing.Email,
        PaidAt:          f.now().UTC().Truncate(time.Second),
    }
    rec.draft.PaymentStatus = model.PaymentSucceeded
    rec.confirmation = &conf
    if err := f.save(ctx, sessionID, rec); err != nil {
        f.Logger.Errorf("session %s: payment %s captured but session save failed: %v", sessionID, intent.ID, err)
        return settlement{}, err
    }
    f.Logger.Infof("session %s: booking %d paid (%d minor units, intent %s)", sessionID, d.BookingID, amount, intent.ID)
    return settlement{conf: conf, draft: rec.draft, nights: nights, fresh: true}, nil
}

// paymentFailed records the failure on the draft and returns err.
func (f *Flow) paymentFailed(ctx context.Context, sessionID string, rec record, err error) error {
    f.Logger.Warnf("session %s: payment for booking %d failed: %v", sessionID, rec.draft.BookingID, err)
    rec.draft.PaymentStatus = model.PaymentFailed
    if serr := f.save(ctx, sessionID, rec); serr != nil {
        f.Logger.Errorf("session %s: saving failed payment status: %v", sessionID, serr)
    }
    return err
}

// ConfirmKey is the idempotency key of one confirmation attempt.  It is
// derived from the booking, its intent, the instrument and the count of
// answered attempts, so a confirmation whose outcome was lost (timeout or
// failed session save) is replayed by the processor instead of charged twice.
func ConfirmKey(bookingID int64, clientSecret, instrument string, attempt int) string {
    name := fmt.Sprintf("booking/%d/%s/%s/%d", bookingID, clientSecret, instrument, attempt)
    return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// afterPayment writes the durable confirmation record and publishes the
// booking.confirmed event.  The money is already captured, so failures here
// are logged and do not fail the step.
func (f *Flow) afterPayment(ctx context.Context, sessionID string, d model.Draft, nights int, conf model.Confirmation) {
    if f.Confirmations != nil {
        if err := f.Confirmations.Save(ctx, sessionID, conf); err != nil {
            f.Logger.Errorf("session %s: recording confirmation for booking %d: %v", sessionID, conf.BookingID, err)
        }
    }
    if f.Events != nil {
        ev := queue.BookingConfirmedEvent{
            BookingID:        conf.BookingID,
            GuestID:          d.GuestID,
            GuestName:        d.GuestName,
            GuestEmail:       d.GuestEmail,
            GuestContact:     d.GuestContact,
            RoomType:         d.RoomType,
            CheckIn:          model.FormatDate(d.CheckIn),
            CheckOut:         model.FormatDate(d.CheckOut),
            Nights:           nights,
            TotalAmountCents: conf.AmountMinor,
            Currency:         conf.Currency,
            PaymentIntentID:  conf.PaymentIntentID,
            ConfirmedAt:      conf.PaidAt.Format(time.RFC3339),
        }
        if err := f.Events.PublishBookingConfirmed(ctx, ev); err != nil {
            f.Logger.Warnf("session %s: publishing booking.confirmed for %d: %v", sessionID, conf.BookingID, err)
        }
    }
}

func marshalConfirmation(c model.Confirmation) (string, error) {
    bs, err := json.Marshal(c)
    if err != nil {
        return "", fmt.Errorf("encode payment confirmation: %w", err)
    }
    return string(bs), nil
}

func unmarshalConfirmation(s string, c *model.Confirmation) error {
    if err := json.Unmarshal([]byte(s), c); err != nil {
        return fmt.Errorf("decode payment confirmation: %w", err)
    }
    return nil
}
