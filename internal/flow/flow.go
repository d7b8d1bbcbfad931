// Package flow implements the booking session: room search and selection,
// guest identification, booking confirmation and payment.  Each step loads
// the session draft, validates its own preconditions locally, calls at most
// the backend services it needs in strict sequence, and saves the draft
// back.  A failed step leaves the stored draft as it was before the failure
// so the user can retry without re-entering earlier data.
package flow

import (
    "context"
    "errors"
    "time"

    "github.com/iliyamo/hotel-booking-web/internal/model"
    "github.com/iliyamo/hotel-booking-web/internal/queue"
    "github.com/iliyamo/hotel-booking-web/internal/session"
)

var (
    // ErrNoDraft is returned when a step needs a draft and the session has none.
    ErrNoDraft = errors.New("no booking in progress")
    // ErrDraftLocked is returned when room or guest details would change
    // after the Booking Service already accepted the draft.
    ErrDraftLocked = errors.New("booking already created for this session")
)

// RoomLister is the Rooms Service.
type RoomLister interface {
    ListRooms(ctx context.Context) ([]model.Room, error)
}

// GuestDirectory is the Guest Service.
type GuestDirectory interface {
    ListGuests(ctx context.Context) ([]model.Guest, error)
    CreateGuest(ctx context.Context, name, email, contact string) (int64, error)
}

// BookingCreator is the Booking Service.
type BookingCreator interface {
    CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error)
}

// PaymentGateway is the payment processor integration.
type PaymentGateway interface {
    CreateIntent(ctx context.Context, in model.IntentRequest) (model.IntentResponse, error)
    ConfirmIntent(ctx context.Context, clientSecret, instrument string, billing model.BillingDetails, idempotencyKey string) (model.PaymentIntent, error)
}

// ConfirmationRecorder keeps a durable copy of successful payments.
type ConfirmationRecorder interface {
    Save(ctx context.Context, sessionID string, c model.Confirmation) error
}

// EventPublisher announces confirmed bookings.
type EventPublisher interface {
    PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// Logger is the subset of echo.Logger the flow writes to.
type Logger interface {
    Debugf(format string, args ...interface{})
    Infof(format string, args ...interface{})
    Warnf(format string, args ...interface{})
    Errorf(format string, args ...interface{})
}

// Policy holds the tunable rules of the flow.
type Policy struct {
    // DateShiftDays is added to check-in and check-out before they are sent
    // to the Booking Service.  The backend expects 1.
    DateShiftDays int
    // StrictRoomTypes rejects room labels that match no known category
    // instead of passing them through unchanged.
    StrictRoomTypes bool
    // Currency for payment intents.
    Currency string
}

// Deps are the collaborators of the flow.  Confirmations and Events may be
// nil, in which case those side effects are skipped.
type Deps struct {
    Store         session.Store
    Rooms         RoomLister
    Guests        GuestDirectory
    Bookings      BookingCreator
    Payments      PaymentGateway
    Confirmations ConfirmationRecorder
    Events        EventPublisher
    Logger        Logger
}

// Flow runs booking-session steps.  Steps for the same session are
// serialized within the process so a double submit cannot create two
// bookings.  Different sessions never wait on each other.
type Flow struct {
    Deps
    policy Policy
    now    func() time.Time
    locks  sessionLocks
}

// New builds a Flow.  Store, Rooms, Guests, Bookings, Payments and Logger
// must be non-nil.
func New(deps Deps, policy Policy) *Flow {
    if deps.Store == nil || deps.Rooms == nil || deps.Guests == nil || deps.Bookings == nil || deps.Payments == nil || deps.Logger == nil {
        panic("nil dependency passed to flow.New")
    }
    if policy.Currency == "" {
        policy.Currency = "SGD"
    }
    return &Flow{Deps: deps, policy: policy, now: time.Now}
}

// lock serializes steps of one session.  It gives up with ctx's error when
// the request goes away while another step of the session is running.
func (f *Flow) lock(ctx context.Context, sessionID string) (func(), error) {
    return f.locks.acquire(ctx, sessionID)
}

// record is the stored session: the draft plus the keys that live beside it.
type record struct {
    draft        model.Draft
    confirmation *model.Confirmation
}

func (f *Flow) load(ctx context.Context, sessionID string) (record, error) {
    fields, err := f.Store.Load(ctx, sessionID)
    if err != nil {
        return record{}, err
    }
    d, err := session.DecodeDraft(fields)
    if err != nil {
        return record{}, err
    }
    rec := record{draft: d}
    if v := fields[session.KeyPaymentConfirmation]; v != "" {
        var c model.Confirmation
        if err := unmarshalConfirmation(v, &c); err != nil {
            return record{}, err
        }
        rec.confirmation = &c
    }
    return rec, nil
}

func (f *Flow) save(ctx context.Context, sessionID string, rec record) error {
    fields, err := session.EncodeDraft(rec.draft)
    if err != nil {
        return err
    }
    if rec.draft.RoomType != "" {
        _, total := Derive(rec.draft)
        fields[session.KeyTotalCost] = total.StringFixed(2)
    }
    if rec.confirmation != nil {
        v, err := marshalConfirmation(*rec.confirmation)
        if err != nil {
            return err
        }
        fields[session.KeyPaymentConfirmation] = v
    }
    return f.Store.Save(ctx, sessionID, fields)
}

// Summary is the booking summary as displayed: draft fields plus values
// recomputed from them.
type Summary struct {
    Stage         model.Stage         `json:"stage"`
    CheckIn       string              `json:"check_in,omitempty"`
    CheckOut      string              `json:"check_out,omitempty"`
    Adults        int                 `json:"adults"`
    Children      int                 `json:"children"`
    GuestCount    string              `json:"guest_count"`
    RoomID        int64               `json:"room_id,omitempty"`
    RoomType      string              `json:"room_type,omitempty"`
    RoomPrice     string              `json:"room_price,omitempty"`
    RoomImage     string              `json:"room_image,omitempty"`
    GuestName     string              `json:"guest_name,omitempty"`
    GuestEmail    string              `json:"guest_email,omitempty"`
    GuestContact  string              `json:"guest_contact,omitempty"`
    GuestID       int64               `json:"guest_id,omitempty"`
    Nights        int                 `json:"nights"`
    TotalCost     string              `json:"total_cost"`
    BookingID     int64               `json:"booking_id,omitempty"`
    PaymentStatus model.PaymentStatus `json:"payment_status,omitempty"`
}

// DefaultRoomImage is shown when the selected room carried no image.
const DefaultRoomImage = "images/default.jpg"

func summarize(d model.Draft) Summary {
    nights, total := Derive(d)
    s := Summary{
        Stage:         d.Stage(),
        CheckIn:       model.FormatDate(d.CheckIn),
        CheckOut:      model.FormatDate(d.CheckOut),
        Adults:        d.Adults,
        Children:      d.Children,
        GuestCount:    GuestLabel(d.Adults, d.Children),
        RoomID:        d.RoomID,
        RoomType:      d.RoomType,
        RoomImage:     d.RoomImage,
        GuestName:     d.GuestName,
        GuestEmail:    d.GuestEmail,
        GuestContact:  d.GuestContact,
        GuestID:       d.GuestID,
        Nights:        nights,
        TotalCost:     total.StringFixed(2),
        BookingID:     d.BookingID,
        PaymentStatus: d.PaymentStatus,
    }
    if d.RoomType != "" {
        s.RoomPrice = d.RoomPriceNightly.StringFixed(2)
        if s.RoomImage == "" {
            s.RoomImage = DefaultRoomImage
        }
    }
    return s
}

// Summary returns the current draft with nights and total recomputed.
func (f *Flow) Summary(ctx context.Context, sessionID string) (Summary, error) {
    rec, err := f.load(ctx, sessionID)
    if err != nil {
        return Summary{}, err
    }
    if rec.draft.Stage() == model.StageEmpty {
        return Summary{}, ErrNoDraft
    }
    return summarize(rec.draft), nil
}

// Confirmation returns the local payment confirmation of the session.
func (f *Flow) Confirmation(ctx context.Context, sessionID string) (model.Confirmation, error) {
    rec, err := f.load(ctx, sessionID)
    if err != nil {
        return model.Confirmation{}, err
    }
    if rec.confirmation == nil {
        return model.Confirmation{}, ErrNoDraft
    }
    return *rec.confirmation, nil
}

// Abandon discards the session's draft.  Nothing is sent to the backend; a
// draft without a booking leaves no server-side trace.
func (f *Flow) Abandon(ctx context.Context, sessionID string) error {
    unlock, err := f.lock(ctx, sessionID)
    if err != nil {
        return err
    }
    defer unlock()
    return f.Store.Clear(ctx, sessionID)
}
