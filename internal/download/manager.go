package download

import (
	"context"
	"fmt"

	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/registry"
	"github.com/timvideos/fwfetch/internal/resolver"
	"github.com/timvideos/fwfetch/internal/service"
	"github.com/timvideos/fwfetch/internal/utils"
)

// HTTP is the part of service.Fetcher the downloader needs.
type HTTP interface {
	Get(ctx context.Context, url string) (service.Response, error)
	Download(ctx context.Context, url, dst string, maxSize int64) (int64, error)
}

type Manager struct {
	config *config.Config
	lister resolver.Lister
	http   HTTP
}

func New(cfg *config.Config, l resolver.Lister, h HTTP) *Manager {
	return &Manager{config: cfg, lister: l, http: h}
}

// Result describes what Execute resolved and, unless it was a dry run, wrote.
type Result struct {
	Path     resolver.Path
	ImageURL string
	Output   string
	Bytes    int64
}

func (m *Manager) Execute(ctx context.Context, sel resolver.Selection, dryRun bool) (*Result, error) {
	archive := resolver.ArchiveURL(m.config.APIBaseURL, m.config.Repo, sel)

	known, err := resolver.Revisions(ctx, m.lister, archive, m.config.RevisionsTTL)
	if err != nil {
		return nil, err
	}

	rev, err := resolver.ResolveRevision(ctx, known, sel.Revision, sel.Channel, m.loadRegistry)
	if err != nil {
		return nil, err
	}

	walker := resolver.NewWalker(m.lister, archive, m.config.ListingTTL)
	path, err := walker.Resolve(ctx, sel, rev, known)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:     path,
		ImageURL: ImageURL(m.config, sel, path),
		Output:   OutputName(sel, path),
	}
	logger.Info("Image URL: %s", res.ImageURL)

	if dryRun {
		logger.Info("Dry run: would download to %s", res.Output)
		return res, nil
	}

	exists, err := utils.FileExists(res.Output)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Warn("Overwriting existing file %s", res.Output)
	}

	logger.Info("Downloading to: %s", res.Output)
	n, err := m.http.Download(ctx, res.ImageURL, res.Output, 0)
	if err != nil {
		return nil, fmt.Errorf("download firmware: %w", err)
	}
	res.Bytes = n

	logger.Success("Done! (%s)", utils.HumanSize(n))
	return res, nil
}

func (m *Manager) loadRegistry(ctx context.Context) (*registry.Registry, error) {
	return registry.Fetch(ctx, m.http, m.config.RegistryURL)
}
