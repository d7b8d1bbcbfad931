package session

import (
    "context"
    "sync"
)

// MemoryStore keeps records in process memory.  It is used by tests and by
// single-instance development runs (SESSION_STORE=memory).
type MemoryStore struct {
    mu   sync.RWMutex
    data map[string]map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
    return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (map[string]string, error) {
    m.mu.RLock()
    defer m.mu.RUnlock()
    out := make(map[string]string, len(m.data[sessionID]))
    for k, v := range m.data[sessionID] {
        out[k] = v
    }
    return out, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, fields map[string]string) error {
    cp := make(map[string]string, len(fields))
    for k, v := range fields {
        cp[k] = v
    }
    m.mu.Lock()
    m.data[sessionID] = cp
    m.mu.Unlock()
    return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
    m.mu.Lock()
    delete(m.data, sessionID)
    m.mu.Unlock()
    return nil
}
