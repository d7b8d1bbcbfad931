package client

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "net/http"

    "github.com/iliyamo/hotel-booking-web/internal/model"
)

// RoomsClient lists rooms from the Rooms Service.
type RoomsClient struct {
    ep endpoint
}

// NewRoomsClient points at the Rooms Service base URL.
func NewRoomsClient(baseURL string, opts Options) *RoomsClient {
    return &RoomsClient{ep: newEndpoint("rooms", baseURL, opts)}
}

// ListRooms returns every room.  The service answers either with a bare
// array or with the {data: {rooms: [...]}} envelope; both are accepted.
func (c *RoomsClient) ListRooms(ctx context.Context) ([]model.Room, error) {
    resp, err := c.ep.send(ctx, "list rooms", http.MethodGet, "/rooms", nil)
    if err != nil {
        return nil, err
    }
    if !resp.success() {
        return nil, c.ep.fail("list rooms", resp.status, backendMessage(resp.body), nil)
    }
    rooms, err := decodeRooms(resp.body)
    if err != nil {
        return nil, c.ep.fail("list rooms", resp.status, "malformed response", err)
    }
    return rooms, nil
}

func decodeRooms(body []byte) ([]model.Room, error) {
    body = bytes.TrimSpace(body)
    var rooms []model.Room
    if len(body) > 0 && body[0] == '[' {
        if err := json.Unmarshal(body, &rooms); err != nil {
            return nil, err
        }
        return rooms, nil
    }
    var env envelope
    if err := json.Unmarshal(body, &env); err != nil {
        return nil, err
    }
    data := bytes.TrimSpace(env.Data)
    if len(data) == 0 {
        return nil, fmt.Errorf("missing data")
    }
    if data[0] == '[' {
        err := json.Unmarshal(data, &rooms)
        return rooms, err
    }
    var wrapped struct {
        Rooms []model.Room `json:"rooms"`
    }
    if err := json.Unmarshal(data, &wrapped); err != nil {
        return nil, err
    }
    return wrapped.Rooms, nil
}
