package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-booking-web/internal/model"
)

// ConfirmationRepo stores payment confirmations in the
// booking_confirmations table.  All timestamps are stored in UTC.
type ConfirmationRepo struct {
	db *sql.DB
}

// NewConfirmationRepo returns a new ConfirmationRepo bound to the given database.
func NewConfirmationRepo(db *sql.DB) *ConfirmationRepo { return &ConfirmationRepo{db: db} }

// ConfirmationRecord mirrors a row of booking_confirmations.
type ConfirmationRecord struct {
	ID        uint64
	SessionID string
	model.Confirmation
	CreatedAt time.Time
}

// Save writes the confirmation of a paid booking.  Writing the same booking
// again refreshes the row instead of failing, so a retried payment step
// stays harmless.
func (r *ConfirmationRepo) Save(ctx context.Context, sessionID string, c model.Confirmation) error {
	const q = `INSERT INTO booking_confirmations
	             (booking_id, session_id, amount, amount_minor, currency, payment_intent_id, guest_email, paid_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	             session_id = VALUES(session_id),
	             amount = VALUES(amount),
	             amount_minor = VALUES(amount_minor),
	             currency = VALUES(currency),
	             payment_intent_id = VALUES(payment_intent_id),
	             guest_email = VALUES(guest_email),
	             paid_at = VALUES(paid_at)`
	_, err := r.db.ExecContext(ctx, q,
		c.BookingID, sessionID, c.Amount.StringFixed(2), c.AmountMinor,
		c.Currency, c.PaymentIntentID, c.GuestEmail, c.PaidAt.UTC(),
	)
	return err
}

// GetByBookingID returns the confirmation recorded for a booking, or
// ErrConfirmationNotFound.
func (r *ConfirmationRepo) GetByBookingID(ctx context.Context, bookingID int64) (*ConfirmationRecord, error) {
	const q = `SELECT id, session_id, booking_id, amount, amount_minor, currency, payment_intent_id, guest_email, paid_at, created_at
	           FROM booking_confirmations WHERE booking_id = ?`
	var (
		rec    ConfirmationRecord
		amount string
	)
	err := r.db.QueryRowContext(ctx, q, bookingID).Scan(
		&rec.ID, &rec.SessionID, &rec.BookingID, &amount, &rec.AmountMinor,
		&rec.Currency, &rec.PaymentIntentID, &rec.GuestEmail, &rec.PaidAt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfirmationNotFound
		}
		return nil, err
	}
	if rec.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &rec, nil
}
