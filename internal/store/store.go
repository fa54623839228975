package store

import (
	"encoding/json"
	"time"
)

// Store caches raw listing payloads keyed by URL.
type Store interface {
	// Get returns the payload for key if present and, when maxAge > 0, not
	// older than maxAge.
	Get(key string, maxAge time.Duration) (json.RawMessage, bool)

	// Put records payload for key, replacing any previous entry.
	Put(key string, payload json.RawMessage) error
}

// Inspector is implemented by stores that can enumerate and drop entries.
type Inspector interface {
	Entries() (map[string]Entry, error)
	Clear() error
}

type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

func (e Entry) fresh(now time.Time, maxAge time.Duration) bool {
	return maxAge <= 0 || now.Sub(e.Timestamp) < maxAge
}
