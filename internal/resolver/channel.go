package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/listing"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/registry"
	"github.com/timvideos/fwfetch/internal/revision"
	"github.com/timvideos/fwfetch/internal/utils"
)

// ErrNoRevisions is returned when the archive lists no usable revision.
var ErrNoRevisions = errors.New("no revisions found in archive")

// Lister is the part of listing.Lister the resolver walks with.
type Lister interface {
	List(ctx context.Context, url string, maxAge time.Duration) ([]listing.Entry, error)
}

// RegistryLoader fetches the channel registry on demand.
type RegistryLoader func(ctx context.Context) (*registry.Registry, error)

// Revisions lists the revision directories under archiveURL, oldest first.
// Directory names that are not revisions are skipped with a warning.
func Revisions(ctx context.Context, l Lister, archiveURL string, maxAge time.Duration) ([]revision.Version, error) {
	logger.Debug("listing revisions at %s", archiveURL)

	entries, err := l.List(ctx, archiveURL, maxAge)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}

	var revs []revision.Version
	for _, name := range listing.Dirs(entries) {
		v, err := revision.Parse(name)
		if err != nil {
			logger.Warn("Skipping archive entry %s: %v", name, err)
			continue
		}
		revs = append(revs, v)
	}
	revision.Sort(revs)
	return revs, nil
}

// ResolveRevision picks the revision to download. An explicit rev must be one
// of known; otherwise the latest channel maps to the newest known revision and
// any other channel is looked up in the registry.
func ResolveRevision(ctx context.Context, known []revision.Version, rev, channel string, load RegistryLoader) (revision.Version, error) {
	if rev != "" {
		v, err := revision.Parse(rev)
		if err != nil {
			return revision.Version{}, fmt.Errorf("invalid --rev: %w", err)
		}
		if !revision.Contains(known, v) {
			return revision.Version{}, &RevisionNotFoundError{Revision: v, Known: known}
		}
		logger.Info("rev: %s", v)
		return v, nil
	}

	if channel == config.LatestChannel {
		v, ok := revision.Latest(known)
		if !ok {
			return revision.Version{}, ErrNoRevisions
		}
		logger.Info("Channel %s is at rev %s", channel, v)
		return v, nil
	}

	reg, err := load(ctx)
	if err != nil {
		return revision.Version{}, err
	}
	v, ok := reg.Lookup(channel)
	if !ok {
		return revision.Version{}, &ChannelNotFoundError{Channel: channel, Available: utils.SortedKeys(reg.Channels)}
	}
	logger.Info("Channel %s is at rev %s", channel, v)
	if !revision.Contains(known, v) {
		logger.Warn("Rev %s of channel %s is not listed in the archive", v, channel)
	}
	return v, nil
}
