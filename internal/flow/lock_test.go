package flow

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLock_OtherSessionsDoNotWait(t *testing.T) {
    h := newHarness(t, Policy{})

    unlock, err := h.flow.lock(context.Background(), "sess-a")
    require.NoError(t, err)
    defer unlock()

    done := make(chan error, 1)
    go func() {
        _, err := h.flow.SelectRoom(context.Background(), sid, RoomChoice{
            RoomType:       "Single",
            Price:          "80",
            SearchCriteria: SearchCriteria{CheckIn: "2024-06-01", CheckOut: "2024-06-02", Adults: "1", Children: "0"},
        })
        done <- err
    }()

    select {
    case err := <-done:
        assert.NoError(t, err)
    case <-time.After(2 * time.Second):
        t.Fatal("SelectRoom waited on another session's lock")
    }
}

func TestLock_SameSessionWaitsUntilContextDone(t *testing.T) {
    h := newHarness(t, Policy{})

    unlock, err := h.flow.lock(context.Background(), sid)
    require.NoError(t, err)

    ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
    defer cancel()
    _, err = h.flow.SelectRoom(ctx, sid, RoomChoice{RoomType: "Single", Price: "80"})
    assert.ErrorIs(t, err, context.DeadlineExceeded)

    unlock()
    assert.Zero(t, h.flow.locks.size())

    again, err := h.flow.lock(context.Background(), sid)
    require.NoError(t, err)
    again()
}

func TestLock_SerializesSameSession(t *testing.T) {
    var l sessionLocks
    unlock, err := l.acquire(context.Background(), "s1")
    require.NoError(t, err)

    acquired := make(chan func(), 1)
    go func() {
        next, err := l.acquire(context.Background(), "s1")
        if err == nil {
            acquired <- next
        }
    }()

    select {
    case <-acquired:
        t.Fatal("second step ran while the first held the lock")
    case <-time.After(50 * time.Millisecond):
    }
    assert.Equal(t, 1, l.size())

    unlock()
    select {
    case next := <-acquired:
        next()
    case <-time.After(2 * time.Second):
        t.Fatal("lock was not handed over")
    }
    assert.Zero(t, l.size())
}
