package flow

import (
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
    t, err := time.Parse("2006-01-02", s)
    if err != nil {
        panic(err)
    }
    return t
}

func TestNights(t *testing.T) {
    tests := []struct {
        name     string
        in, out  time.Time
        expected int
    }{
        {"two nights", day("2024-06-01"), day("2024-06-03"), 2},
        {"one night", day("2024-06-01"), day("2024-06-02"), 1},
        {"same day floors to one", day("2024-06-01"), day("2024-06-01"), 1},
        {"inverted range floors to one", day("2024-06-05"), day("2024-06-01"), 1},
        {"across month end", day("2024-02-27"), day("2024-03-02"), 4},
        {"partial day rounds up", day("2024-06-01"), day("2024-06-02").Add(3 * time.Hour), 2},
        {"missing check-out", day("2024-06-01"), time.Time{}, 1},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            assert.Equal(t, tt.expected, Nights(tt.in, tt.out))
        })
    }
}

func TestTotalCost_RoundsProductToCents(t *testing.T) {
    assert.Equal(t, "300.00", TotalCost(decimal.RequireFromString("150.00"), 2).StringFixed(2))
    assert.Equal(t, "0.00", TotalCost(decimal.Zero, 3).StringFixed(2))
    // 33.335 * 3 = 100.005, rounded once at the end.
    assert.Equal(t, "100.01", TotalCost(decimal.RequireFromString("33.335"), 3).StringFixed(2))
    assert.True(t, TotalCost(decimal.RequireFromString("0.1"), 3).Equal(decimal.RequireFromString("0.3")))
}

func TestMinorUnits(t *testing.T) {
    assert.Equal(t, int64(30000), MinorUnits(decimal.RequireFromString("300.00")))
    assert.Equal(t, int64(1999), MinorUnits(decimal.RequireFromString("19.99")))
}

func TestShiftDate(t *testing.T) {
    assert.Equal(t, day("2024-07-01"), ShiftDate(day("2024-06-30"), 1))
    assert.Equal(t, day("2024-06-30"), ShiftDate(day("2024-06-30"), 0))
    assert.True(t, ShiftDate(time.Time{}, 1).IsZero())
}

func TestGuestLabel(t *testing.T) {
    assert.Equal(t, "2 Adults, 1 Children", GuestLabel(2, 1))
}
