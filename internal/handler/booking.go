// Package handler exposes the HTTP handlers of the booking site.  Each
// handler binds the request, runs one flow step for the caller's session
// and maps the outcome onto a status code.
package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
    "github.com/iliyamo/hotel-booking-web/internal/flow"
    "github.com/iliyamo/hotel-booking-web/internal/middleware"
    "github.com/iliyamo/hotel-booking-web/internal/repository"
)

// ConfirmationLookup reads durable payment confirmations.
type ConfirmationLookup interface {
    GetByBookingID(ctx context.Context, bookingID int64) (*repository.ConfirmationRecord, error)
}

// BookingHandler serves the booking steps.  Confirmations may be nil when
// no database is configured.
type BookingHandler struct {
    Flow          *flow.Flow
    Confirmations ConfirmationLookup
}

// NewBookingHandler constructs a BookingHandler.  f must be non-nil.
func NewBookingHandler(f *flow.Flow, confirmations ConfirmationLookup) *BookingHandler {
    if f == nil {
        panic("nil flow passed to NewBookingHandler")
    }
    return &BookingHandler{Flow: f, Confirmations: confirmations}
}

// ListRooms handles GET /v1/rooms and returns the full listing.
func (h *BookingHandler) ListRooms(c echo.Context) error {
    rooms, err := h.Flow.ListRooms(c.Request().Context())
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// SearchRooms handles POST /v1/rooms/search.  The body carries check_in,
// check_out, adults and children; the criteria are stored in the session
// and the rooms that can be offered are returned.
func (h *BookingHandler) SearchRooms(c echo.Context) error {
    var body flow.SearchCriteria
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    rooms, err := h.Flow.Search(c.Request().Context(), middleware.SessionID(c), body)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// SelectRoom handles POST /v1/booking/room.
func (h *BookingHandler) SelectRoom(c echo.Context) error {
    var body flow.RoomChoice
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    sum, err := h.Flow.SelectRoom(c.Request().Context(), middleware.SessionID(c), body)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, sum)
}

// IdentifyGuest handles POST /v1/booking/guest.
func (h *BookingHandler) IdentifyGuest(c echo.Context) error {
    var body flow.GuestDetails
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    sum, err := h.Flow.IdentifyGuest(c.Request().Context(), middleware.SessionID(c), body)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, sum)
}

// Summary handles GET /v1/booking/summary.
func (h *BookingHandler) Summary(c echo.Context) error {
    sum, err := h.Flow.Summary(c.Request().Context(), middleware.SessionID(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, sum)
}

// ConfirmBooking handles POST /v1/booking/confirm.
func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
    sum, err := h.Flow.ConfirmBooking(c.Request().Context(), middleware.SessionID(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, sum)
}

// Pay handles POST /v1/booking/payment.
func (h *BookingHandler) Pay(c echo.Context) error {
    var body flow.PaymentDetails
    if err := c.Bind(&body); err != nil {
        return badBody(c)
    }
    conf, err := h.Flow.Pay(c.Request().Context(), middleware.SessionID(c), body)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, conf)
}

// Confirmation handles GET /v1/booking/confirmation.
func (h *BookingHandler) Confirmation(c echo.Context) error {
    conf, err := h.Flow.Confirmation(c.Request().Context(), middleware.SessionID(c))
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, conf)
}

// Abandon handles DELETE /v1/booking and discards the session's draft.
func (h *BookingHandler) Abandon(c echo.Context) error {
    if err := h.Flow.Abandon(c.Request().Context(), middleware.SessionID(c)); err != nil {
        return writeError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// GetConfirmation handles GET /v1/confirmations/:booking_id.  Only the
// session that paid may read the record.
func (h *BookingHandler) GetConfirmation(c echo.Context) error {
    id, err := strconv.ParseInt(c.Param("booking_id"), 10, 64)
    if err != nil || id <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
    }
    if h.Confirmations == nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "confirmation not found"})
    }
    rec, err := h.Confirmations.GetByBookingID(c.Request().Context(), id)
    if err != nil {
        return writeError(c, err)
    }
    if rec.SessionID != middleware.SessionID(c) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "confirmation not found"})
    }
    return c.JSON(http.StatusOK, rec.Confirmation)
}

func badBody(c echo.Context) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
}

// writeError maps flow and service errors onto HTTP responses.
func writeError(c echo.Context, err error) error {
    var (
        ve *apperror.ValidationError
        se *apperror.ServiceCallError
        pe *apperror.PaymentError
    )
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "field": ve.Field})
    case errors.As(err, &pe):
        detail := pe.Detail
        if detail == "" {
            detail = "payment could not be completed"
        }
        return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment failed", "detail": detail})
    case errors.As(err, &se):
        msg := se.Message
        if msg == "" {
            msg = se.Service + " service unavailable"
        }
        return c.JSON(http.StatusBadGateway, echo.Map{"error": msg, "service": se.Service, "status": se.Status})
    case errors.Is(err, flow.ErrDraftLocked):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, flow.ErrNoDraft), errors.Is(err, repository.ErrConfirmationNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
    case errors.Is(err, context.Canceled):
        // Client went away; nothing useful to send.
        return nil
    }
    c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
