// Package listing reads directory listings from the GitHub contents API,
// through a Store and with retries on rate-limit-shaped responses.
package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/retry"
	"github.com/timvideos/fwfetch/internal/service"
	"github.com/timvideos/fwfetch/internal/store"
	"github.com/timvideos/fwfetch/internal/utils"
)

const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// Entry is one child of a listing URL.
type Entry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ErrMissing marks a listing URL the API reports as not found.
var ErrMissing = errors.New("listing not found")

// Getter is the part of service.Fetcher the lister needs.
type Getter interface {
	Get(ctx context.Context, url string) (service.Response, error)
}

// RateLimitError carries the "message" of an error-shaped API payload.
type RateLimitError struct {
	URL     string
	Status  int
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("listing %s: API returned %d: %s", e.URL, e.Status, e.Message)
}

type Lister struct {
	http  Getter
	store store.Store
	retry retry.Config
}

func New(http Getter, st store.Store, rc retry.Config) *Lister {
	if st == nil {
		st = store.NewMemory()
	}
	return &Lister{http: http, store: st, retry: rc}
}

// List returns the children of url. A cached payload younger than maxAge (or
// any cached payload when maxAge is 0) is served without a request.
func (l *Lister) List(ctx context.Context, url string, maxAge time.Duration) ([]Entry, error) {
	if payload, ok := l.store.Get(url, maxAge); ok {
		entries, err := decode(payload)
		if err == nil {
			logger.Debug("cache hit: %s", url)
			return entries, nil
		}
		logger.Debug("cache entry for %s unreadable, refetching: %v", url, err)
	}

	payload, err := retry.DoWithResult(ctx, l.retry, func() (json.RawMessage, error) {
		return l.fetch(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	entries, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", url, err)
	}

	if err := l.store.Put(url, payload); err != nil {
		logger.Warn("could not cache listing %s: %v", url, err)
	}
	return entries, nil
}

func (l *Lister) fetch(ctx context.Context, url string) (json.RawMessage, error) {
	resp, err := l.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", url, err)
	}

	body := bytes.TrimSpace(resp.Body)
	switch {
	case len(body) > 0 && body[0] == '[':
		if !json.Valid(body) {
			return nil, fmt.Errorf("listing %s: invalid JSON array", url)
		}
		return json.RawMessage(body), nil

	case len(body) > 0 && body[0] == '{':
		var apiErr struct {
			Message *string `json:"message"`
		}
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != nil {
			if resp.Status == http.StatusNotFound {
				return nil, fmt.Errorf("listing %s: %s: %w", url, *apiErr.Message, ErrMissing)
			}
			logger.Warn("Warning: %s", *apiErr.Message)
			return nil, retry.Retryable(&RateLimitError{URL: url, Status: resp.Status, Message: *apiErr.Message})
		}
	}

	return nil, fmt.Errorf("listing %s: unexpected response (status %d)", url, resp.Status)
}

func decode(payload json.RawMessage) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return entries, nil
}

// IsRateLimited reports whether err ends a listing that never stopped being throttled.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

func Dirs(entries []Entry) []string {
	return names(entries, func(e Entry) bool { return e.Type == TypeDir })
}

func Files(entries []Entry) []string {
	return names(entries, func(e Entry) bool { return e.Type == TypeFile })
}

func names(entries []Entry, keep func(Entry) bool) []string {
	return utils.Map(utils.Filter(entries, keep), func(e Entry) string { return e.Name })
}
