package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/utils"
)

// FS persists the whole URL → Entry mapping in a single JSON file. Every Put
// reloads the file, updates one key and rewrites it atomically, so entries
// written by other invocations survive.
type FS struct {
	path  string
	mu    sync.Mutex
	Clock func() time.Time
}

func NewFS(path string) (*FS, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return &FS{path: path, Clock: time.Now}, nil
}

func (s *FS) Path() string { return s.path }

func (s *FS) Get(key string, maxAge time.Duration) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	e, ok := entries[key]
	if !ok {
		return nil, false
	}
	if !e.fresh(s.Clock(), maxAge) {
		logger.Debug("cache: stale entry for %s (age %s > %s)", key, utils.HumanAge(s.Clock().Sub(e.Timestamp)), maxAge)
		return nil, false
	}
	return e.Payload, true
}

func (s *FS) Put(key string, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	entries[key] = Entry{Timestamp: s.Clock(), Payload: payload}
	if err := utils.WriteJSONAtomic(s.path, entries); err != nil {
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}
	return nil
}

func (s *FS) Entries() (map[string]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

func (s *FS) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cache %s: %w", s.path, err)
	}
	return nil
}

// load reads the mapping; a missing or corrupt file yields an empty one.
func (s *FS) load() map[string]Entry {
	entries := make(map[string]Entry)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Debug("cache: read %s: %v", s.path, err)
		}
		return entries
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Debug("cache: %s is corrupt, starting clean: %v", s.path, err)
		return make(map[string]Entry)
	}
	return entries
}
