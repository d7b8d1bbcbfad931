package client

import (
    "context"
    "encoding/json"
    "net/http"

    "github.com/iliyamo/hotel-booking-web/internal/model"
)

// GuestClient talks to the Guest Service, which offers list and create but
// no atomic upsert.
type GuestClient struct {
    ep endpoint
}

// NewGuestClient points at the Guest Service base URL.
func NewGuestClient(baseURL string, opts Options) *GuestClient {
    return &GuestClient{ep: newEndpoint("guest", baseURL, opts)}
}

// ListGuests returns every guest.  The service answers 404 when it holds no
// guests at all; that is reported as an empty list.
func (c *GuestClient) ListGuests(ctx context.Context) ([]model.Guest, error) {
    const op = "list guests"
    resp, err := c.ep.send(ctx, op, http.MethodGet, "/guests", nil)
    if err != nil {
        return nil, err
    }
    if resp.status == http.StatusNotFound {
        return []model.Guest{}, nil
    }
    if !resp.success() {
        return nil, c.ep.fail(op, resp.status, backendMessage(resp.body), nil)
    }
    var body struct {
        Data struct {
            Guests []model.Guest `json:"guests"`
        } `json:"data"`
    }
    if err := json.Unmarshal(resp.body, &body); err != nil {
        return nil, c.ep.fail(op, resp.status, "malformed response", err)
    }
    return body.Data.Guests, nil
}

// CreateGuest registers a guest and returns the assigned identifier.
func (c *GuestClient) CreateGuest(ctx context.Context, name, email, contact string) (int64, error) {
    const op = "create guest"
    in := model.Guest{Name: name, Email: email, Contact: contact}
    resp, err := c.ep.send(ctx, op, http.MethodPost, "/createGuest", in)
    if err != nil {
        return 0, err
    }
    if !resp.success() {
        return 0, c.ep.fail(op, resp.status, backendMessage(resp.body), nil)
    }
    var body struct {
        Data struct {
            GuestID int64 `json:"guest_id"`
        } `json:"data"`
    }
    if err := json.Unmarshal(resp.body, &body); err != nil {
        return 0, c.ep.fail(op, resp.status, "malformed response", err)
    }
    if body.Data.GuestID <= 0 {
        return 0, c.ep.fail(op, resp.status, "response has no guest_id", nil)
    }
    return body.Data.GuestID, nil
}
