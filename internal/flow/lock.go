package flow

import (
    "context"
    "sync"
)

// sessionLocks serializes the steps of each session.  Entries exist only
// while some step of that session holds or waits for the lock.
type sessionLocks struct {
    mu   sync.Mutex
    held map[string]*sessionLock
}

type sessionLock struct {
    slot chan struct{}
    refs int
}

// acquire blocks until the session's lock is free or ctx is done.  The
// returned func releases the lock and must be called exactly once.
func (l *sessionLocks) acquire(ctx context.Context, sessionID string) (func(), error) {
    l.mu.Lock()
    if l.held == nil {
        l.held = make(map[string]*sessionLock)
    }
    sl, ok := l.held[sessionID]
    if !ok {
        sl = &sessionLock{slot: make(chan struct{}, 1)}
        l.held[sessionID] = sl
    }
    sl.refs++
    l.mu.Unlock()

    select {
    case sl.slot <- struct{}{}:
        return func() {
            <-sl.slot
            l.release(sessionID, sl)
        }, nil
    case <-ctx.Done():
        l.release(sessionID, sl)
        return nil, ctx.Err()
    }
}

func (l *sessionLocks) release(sessionID string, sl *sessionLock) {
    l.mu.Lock()
    defer l.mu.Unlock()
    sl.refs--
    if sl.refs == 0 {
        delete(l.held, sessionID)
    }
}

// size reports how many sessions currently have a lock entry.
func (l *sessionLocks) size() int {
    l.mu.Lock()
    defer l.mu.Unlock()
    return len(l.held)
}
