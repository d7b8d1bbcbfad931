package flow

import (
    "context"
    "strconv"
    "strings"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
    "github.com/iliyamo/hotel-booking-web/internal/model"
    "github.com/iliyamo/hotel-booking-web/internal/utils"
)

// SearchCriteria is the date and party-size search form.  Values arrive as
// form strings; all four are required.
type SearchCriteria struct {
    CheckIn  string `json:"check_in" validate:"required"`
    CheckOut string `json:"check_out" validate:"required"`
    Adults   string `json:"adults" validate:"required"`
    Children string `json:"children" validate:"required"`
}

// parse validates the criteria and converts them.  The check is local; no
// service is called.
func (c SearchCriteria) parse() (model.Draft, error) {
    var d model.Draft
    if err := utils.Validate(c); err != nil {
        return d, err
    }
    var err error
    if d.CheckIn, err = model.ParseDate(strings.TrimSpace(c.CheckIn)); err != nil {
        return d, apperror.Invalid("check_in", "must be a date in YYYY-MM-DD form")
    }
    if d.CheckOut, err = model.ParseDate(strings.TrimSpace(c.CheckOut)); err != nil {
        return d, apperror.Invalid("check_out", "must be a date in YYYY-MM-DD form")
    }
    if !d.CheckOut.After(d.CheckIn) {
        return d, apperror.Invalid("check_out", "must be after check-in")
    }
    if d.Adults, err = strconv.Atoi(strings.TrimSpace(c.Adults)); err != nil || d.Adults < 1 {
        return d, apperror.Invalid("adults", "must be a whole number of at least 1")
    }
    if d.Children, err = strconv.Atoi(strings.TrimSpace(c.Children)); err != nil || d.Children < 0 {
        return d, apperror.Invalid("children", "must be a whole number of at least 0")
    }
    return d, nil
}

// blank reports whether no criterion was supplied at all.
func (c SearchCriteria) blank() bool {
    return c.CheckIn == "" && c.CheckOut == "" && c.Adults == "" && c.Children == ""
}

// ListRooms returns the Rooms Service listing unfiltered.
func (f *Flow) ListRooms(ctx context.Context) ([]model.Room, error) {
    return f.Rooms.ListRooms(ctx)
}

// openDraft loads the draft a room-selection step may write to.  A paid
// draft is finished, so a new search starts over; a booked but unpaid draft
// is locked until payment succeeds or the user abandons it.
func (f *Flow) openDraft(ctx context.Context, sessionID string) (record, error) {
    rec, err := f.load(ctx, sessionID)
    if err != nil {
        return record{}, err
    }
    switch rec.draft.Stage() {
    case model.StagePaid:
        f.Logger.Infof("session %s: starting a new draft after paid booking %d", sessionID, rec.draft.BookingID)
        return record{}, nil
    case model.StageBooked:
        return record{}, ErrDraftLocked
    }
    return rec, nil
}

// Search validates the search form, stores the stay dates and party size in
// the draft and returns the rooms that can currently be offered.
func (f *Flow) Search(ctx context.Context, sessionID string, c SearchCriteria) ([]model.Room, error) {
    parsed, err := c.parse()
    if err != nil {
        return nil, err
    }

    unlock, err := f.lock(ctx, sessionID)
    if err != nil {
        return nil, err
    }
    rec, err := f.openDraft(ctx, sessionID)
    if err != nil {
        unlock()
        return nil, err
    }
    rec.draft.CheckIn, rec.draft.CheckOut = parsed.CheckIn, parsed.CheckOut
    rec.draft.Adults, rec.draft.Children = parsed.Adults, parsed.Children
    err = f.save(ctx, sessionID, rec)
    unlock()
    if err != nil {
        return nil, err
    }

    rooms, err := f.Rooms.ListRooms(ctx)
    if err != nil {
        return nil, err
    }
    available := make([]model.Room, 0, len(rooms))
    for _, r := range rooms {
        if r.Available() {
            available = append(available, r)
        }
    }
    return available, nil
}

// RoomChoice is the "book" action on a room.  Either RoomID names a room
// from the listing, whose type and price are then taken from the Rooms
// Service, or RoomType and Price describe the offer shown on the page.
// Search fields may be repeated here; when omitted the values stored by
// Search are used.
type RoomChoice struct {
    RoomID    int64  `json:"room_id"`
    RoomType  string `json:"room_type"`
    Price     string `json:"price"`
    RoomImage string `json:"room_image"`
    SearchCriteria
}

// SelectRoom records the chosen room and stay in the draft.  Nothing is
// booked yet.
func (f *Flow) SelectRoom(ctx context.Context, sessionID string, choice RoomChoice) (Summary, error) {
    unlock, err := f.lock(ctx, sessionID)
    if err != nil {
        return Summary{}, err
    }
    defer unlock()

    rec, err := f.openDraft(ctx, sessionID)
    if err != nil {
        return Summary{}, err
    }
    d := rec.draft

    criteria := choice.SearchCriteria
    if criteria.blank() {
        criteria = SearchCriteria{
            CheckIn:  model.FormatDate(d.CheckIn),
            CheckOut: model.FormatDate(d.CheckOut),
        }
        if !d.CheckIn.IsZero() {
            criteria.Adults = strconv.Itoa(d.Adults)
            criteria.Children = strconv.Itoa(d.Children)
        }
    }
    parsed, err := criteria.parse()
    if err != nil {
        return Summary{}, err
    }

    roomType, price, err := f.resolveRoom(ctx, choice)
    if err != nil {
        return Summary{}, err
    }

    d.CheckIn, d.CheckOut = parsed.CheckIn, parsed.CheckOut
    d.Adults, d.Children = parsed.Adults, parsed.Children
    d.RoomID = choice.RoomID
    d.RoomType = roomType
    d.RoomPriceNightly = price
    d.RoomImage = strings.TrimSpace(choice.RoomImage)
    rec.draft = d

    if err := f.save(ctx, sessionID, rec); err != nil {
        return Summary{}, err
    }
    return summarize(d), nil
}

// resolveRoom determines the room label and nightly price quoted for the
// choice.
func (f *Flow) resolveRoom(ctx context.Context, choice RoomChoice) (string, decimal.Decimal, error) {
    if choice.RoomID > 0 {
        rooms, err := f.Rooms.ListRooms(ctx)
        if err != nil {
            return "", decimal.Zero, err
        }
        for _, r := range rooms {
            if r.ID != choice.RoomID {
                continue
            }
            if !r.Available() {
                return "", decimal.Zero, apperror.Invalid("room_id", "room %d is not available", r.ID)
            }
            if r.PricePerNight.IsNegative() {
                return "", decimal.Zero, apperror.Invalid("room_id", "room %d has no valid price", r.ID)
            }
            return r.RoomType, r.PricePerNight, nil
        }
        return "", decimal.Zero, apperror.Invalid("room_id", "room %d does not exist", choice.RoomID)
    }

    roomType := strings.TrimSpace(choice.RoomType)
    if roomType == "" {
        return "", decimal.Zero, apperror.Invalid("room_type", "choose a room")
    }
    if strings.TrimSpace(choice.Price) == "" {
        return "", decimal.Zero, apperror.Invalid("price", "is required")
    }
    price, err := decimal.NewFromString(strings.TrimSpace(choice.Price))
    if err != nil || price.IsNegative() {
        return "", decimal.Zero, apperror.Invalid("price", "must be a non-negative amount")
    }
    return roomType, price, nil
}
