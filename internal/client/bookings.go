package client

import (
    "context"
    "encoding/json"
    "net/http"

    "github.com/iliyamo/hotel-booking-web/internal/model"
)

// BookingClient creates bookings through the Booking Service.
type BookingClient struct {
    ep endpoint
}

// NewBookingClient points at the Booking Service base URL.
func NewBookingClient(baseURL string, opts Options) *BookingClient {
    return &BookingClient{ep: newEndpoint("booking", baseURL, opts)}
}

// CreateBooking submits a booking.  Only 200 and 201 count as success, and
// the reply must carry a booking under "data" with a positive booking_id.
func (c *BookingClient) CreateBooking(ctx context.Context, req model.BookingRequest) (model.Booking, error) {
    const op = "create booking"
    resp, err := c.ep.send(ctx, op, http.MethodPost, "/makebooking", req)
    if err != nil {
        return model.Booking{}, err
    }
    if resp.status != http.StatusOK && resp.status != http.StatusCreated {
        return model.Booking{}, c.ep.fail(op, resp.status, backendMessage(resp.body), nil)
    }
    var body struct {
        Data *model.Booking `json:"data"`
    }
    if err := json.Unmarshal(resp.body, &body); err != nil {
        return model.Booking{}, c.ep.fail(op, resp.status, "malformed response", err)
    }
    if body.Data == nil || body.Data.BookingID <= 0 {
        return model.Booking{}, c.ep.fail(op, resp.status, "response has no booking", nil)
    }
    return *body.Data, nil
}
