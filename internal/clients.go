package internal

import (
	"time"

	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/listing"
	"github.com/timvideos/fwfetch/internal/service"
	"github.com/timvideos/fwfetch/internal/store"
)

// newHTTPClient is replaced in tests to reach TLS test servers.
var newHTTPClient = func(timeout time.Duration) service.HTTPClient {
	return service.NewHTTPClient(timeout)
}

func newClients(cfg *config.Config, st store.Store) (*service.Fetcher, *listing.Lister) {
	fetcher := service.NewFetcher(newHTTPClient(cfg.HTTPTimeout), cfg.UserAgent+"/"+Version)
	return fetcher, listing.New(fetcher, st, cfg.Retry)
}
