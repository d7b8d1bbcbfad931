package flow

import (
    "context"
    "strings"

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
    "github.com/iliyamo/hotel-booking-web/internal/model"
    "github.com/iliyamo/hotel-booking-web/internal/utils"
)

// GuestDetails is the guest form.  Contact may be given whole or as a
// country code plus local number, which are concatenated.
type GuestDetails struct {
    Name        string `json:"full_name" validate:"required"`
    Email       string `json:"email" validate:"required,email"`
    Contact     string `json:"contact"`
    CountryCode string `json:"country_code"`
    LocalNumber string `json:"local_number"`
}

func (g GuestDetails) normalize() (GuestDetails, error) {
    g.Name = strings.TrimSpace(g.Name)
    g.Email = strings.TrimSpace(g.Email)
    g.Contact = strings.TrimSpace(g.Contact)
    if g.Contact == "" && strings.TrimSpace(g.LocalNumber) != "" {
        g.Contact = strings.TrimSpace(g.CountryCode) + strings.TrimSpace(g.LocalNumber)
    }
    if err := utils.Validate(g); err != nil {
        return g, err
    }
    if g.Contact == "" {
        return g, apperror.Invalid("contact", "is required")
    }
    return g, nil
}

// FindOrCreateGuest returns the identifier of the guest whose name and email
// match (case-insensitively), creating the guest when none does.  The Guest
// Service has no atomic upsert, so two sessions racing with the same name
// and email can each create a record; that duplicate is accepted.
func (f *Flow) FindOrCreateGuest(ctx context.Context, name, email, contact string) (int64, bool, error) {
    guests, err := f.Guests.ListGuests(ctx)
    if err != nil {
        return 0, false, err
    }
    for _, g := range guests {
        if g.GuestID > 0 && g.Matches(name, email) {
            return g.GuestID, false, nil
        }
    }
    id, err := f.Guests.CreateGuest(ctx, name, email, contact)
    if err != nil {
        return 0, false, err
    }
    return id, true, nil
}

// IdentifyGuest stores the guest's contact details and resolves them to a
// Guest Service record.  The details are saved before the service is
// called, so a failed lookup can be retried without re-entering them.
func (f *Flow) IdentifyGuest(ctx context.Context, sessionID string, details GuestDetails) (Summary, error) {
    details, err := details.normalize()
    if err != nil {
        return Summary{}, err
    }

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
    switch d.Stage() {
    case model.StageEmpty, model.StageSearched:
        return Summary{}, apperror.Invalid("room_type", "choose a room first")
    case model.StageBooked, model.StagePaid:
        return Summary{}, ErrDraftLocked
    }

    sameGuest := (model.Guest{Name: d.GuestName, Email: d.GuestEmail}).Matches(details.Name, details.Email)
    if !sameGuest {
        d.GuestID = 0
    }
    d.GuestName, d.GuestEmail, d.GuestContact = details.Name, details.Email, details.Contact
    rec.draft = d
    if err := f.save(ctx, sessionID, rec); err != nil {
        return Summary{}, err
    }

    if d.GuestID == 0 {
        if err := f.resolveGuest(ctx, sessionID, &rec); err != nil {
            return Summary{}, err
        }
    }
    return summarize(rec.draft), nil
}

// resolveGuest runs find-or-create for the draft's guest and saves the id.
func (f *Flow) resolveGuest(ctx context.Context, sessionID string, rec *record) error {
    d := &rec.draft
    id, created, err := f.FindOrCreateGuest(ctx, d.GuestName, d.GuestEmail, d.GuestContact)
    if err != nil {
        f.Logger.Warnf("session %s: guest resolution failed: %v", sessionID, err)
        return err
    }
    if created {
        f.Logger.Infof("session %s: created guest %d", sessionID, id)
    }
    d.GuestID = id
    return f.save(ctx, sessionID, *rec)
}
