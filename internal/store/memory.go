package store

import (
	"encoding/json"
	"maps"
	"sync"
	"time"
)

// Memory is a process-local Store, used with --no-cache and in tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]Entry
	Clock   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]Entry), Clock: time.Now}
}

func (m *Memory) Get(key string, maxAge time.Duration) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || !e.fresh(m.Clock(), maxAge) {
		return nil, false
	}
	return e.Payload, true
}

func (m *Memory) Put(key string, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = Entry{Timestamp: m.Clock(), Payload: append(json.RawMessage(nil), payload...)}
	return nil
}

func (m *Memory) Entries() (map[string]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.entries), nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]Entry)
	return nil
}
