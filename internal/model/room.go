package model

import (
    "bytes"
    "encoding/json"
    "strings"

    "github.com/shopspring/decimal"
)

// Room is one entry of the Rooms Service listing.
type Room struct {
    ID            int64           `json:"id"`
    RoomNumber    Label           `json:"room_number"`
    RoomType      string          `json:"room_type"`
    PricePerNight decimal.Decimal `json:"price_per_night"`
    Status        string          `json:"status"`
    Floor         int             `json:"floor,omitempty"`
}

// Available reports whether the room can be offered in a search result.
func (r Room) Available() bool {
    switch strings.ToUpper(r.Status) {
    case "VACANT", "AVAILABLE", "":
        return true
    }
    return false
}

// Label is a string that tolerates being sent as a JSON number.  Room
// numbers arrive as either "101" or 101 depending on the backend.
type Label string

func (l *Label) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        *l = Label(s)
        return nil
    }
    if bytes.Equal(b, []byte("null")) {
        *l = ""
        return nil
    }
    var n json.Number
    if err := json.Unmarshal(b, &n); err != nil {
        return err
    }
    *l = Label(n.String())
    return nil
}

// RoomCategory is the canonical room enumeration accepted by the Booking
// Service.
type RoomCategory int

const (
    RoomCategoryUnrecognized RoomCategory = iota
    RoomCategorySingle
    RoomCategoryFamily
    RoomCategoryPresidentialSuite
)

func (c RoomCategory) String() string {
    switch c {
    case RoomCategorySingle:
        return "Single"
    case RoomCategoryFamily:
        return "Family"
    case RoomCategoryPresidentialSuite:
        return "PresidentialSuite"
    }
    return "unrecognized"
}

// categoryKeywords is checked in order; the first keyword found anywhere in
// the label (case-insensitive, whitespace ignored) wins.
var categoryKeywords = []struct {
    keyword  string
    category RoomCategory
}{
    {"single", RoomCategorySingle},
    {"family", RoomCategoryFamily},
    {"presidential", RoomCategoryPresidentialSuite},
}

// NormalizeRoomType maps a display label such as "Deluxe Family Room" or
// "Presidential Suite" onto a RoomCategory.  Labels containing none of the
// known keywords yield RoomCategoryUnrecognized and false.
func NormalizeRoomType(label string) (RoomCategory, bool) {
    folded := strings.ToLower(strings.Join(strings.Fields(label), ""))
    if folded == "" {
        return RoomCategoryUnrecognized, false
    }
    for _, kw := range categoryKeywords {
        if strings.Contains(folded, kw.keyword) {
            return kw.category, true
        }
    }
    return RoomCategoryUnrecognized, false
}
