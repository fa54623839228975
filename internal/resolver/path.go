package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/timvideos/fwfetch/internal/listing"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/revision"
	"github.com/timvideos/fwfetch/internal/utils"
)

const firmwareExt = ".bin"

// TargetStatus is the outcome of looking a target up at one revision.
type TargetStatus int

const (
	TargetFound TargetStatus = iota
	TargetNotAtRevision
	TargetNotFound
)

func (s TargetStatus) String() string {
	switch s {
	case TargetFound:
		return "found"
	case TargetNotAtRevision:
		return "not at revision"
	default:
		return "not found"
	}
}

// TargetLookup carries the revision the lookup settled on and the targets
// that were listed there.
type TargetLookup struct {
	Status    TargetStatus
	Revision  revision.Version
	Available []string
}

// Path is a fully resolved firmware location inside the archive.
type Path struct {
	Revision revision.Version
	Platform string
	Target   string
	Arch     string
	Filename string
}

// Walker descends the archive tree one level at a time.
type Walker struct {
	lister  Lister
	archive string
	maxAge  time.Duration
}

func NewWalker(l Lister, archiveURL string, maxAge time.Duration) *Walker {
	return &Walker{lister: l, archive: archiveURL, maxAge: maxAge}
}

func (w *Walker) list(ctx context.Context, segments ...string) ([]listing.Entry, error) {
	return w.lister.List(ctx, utils.DirURL(w.archive, segments...), w.maxAge)
}

// Platforms lists the platform directories of rev and checks platform is one
// of them.
func (w *Walker) Platforms(ctx context.Context, rev revision.Version, platform string) ([]string, error) {
	entries, err := w.list(ctx, rev.String())
	if err != nil {
		return nil, err
	}
	platforms := listing.Dirs(entries)
	logger.Info("Found platforms: %s", strings.Join(platforms, ", "))

	if !utils.Includes(platforms, platform) {
		return platforms, &NotFoundError{Kind: KindPlatform, Want: platform, Revision: rev, Available: platforms}
	}
	return platforms, nil
}

// LookupTarget reports whether target exists for platform at rev. A missing
// platform is an error, a missing target is not.
func (w *Walker) LookupTarget(ctx context.Context, rev revision.Version, platform, target string) (TargetLookup, error) {
	if _, err := w.Platforms(ctx, rev, platform); err != nil {
		return TargetLookup{}, err
	}

	entries, err := w.list(ctx, rev.String(), platform)
	if err != nil {
		return TargetLookup{}, err
	}
	targets := listing.Dirs(entries)
	logger.Info("Found targets: %s", strings.Join(targets, ", "))

	if !utils.Includes(targets, target) {
		logger.Warn("Did not find target %s for platform %s at rev %s (found %s)",
			target, platform, rev, joinOrNone(targets))
		return TargetLookup{Status: TargetNotAtRevision, Revision: rev, Available: targets}, nil
	}
	return TargetLookup{Status: TargetFound, Revision: rev, Available: targets}, nil
}

// FindLastRevision searches known newest first, skipping skip, for a revision
// that has target. The platform disappearing at a revision stops the search.
func (w *Walker) FindLastRevision(ctx context.Context, known []revision.Version, skip revision.Version, platform, target string) (TargetLookup, error) {
	for _, rev := range revision.Newest(known) {
		if rev == skip {
			continue
		}
		lookup, err := w.LookupTarget(ctx, rev, platform, target)
		if err != nil {
			return TargetLookup{}, err
		}
		if lookup.Status == TargetFound {
			logger.Info("found at rev %s", rev)
			return lookup, nil
		}
	}
	return TargetLookup{Status: TargetNotFound}, nil
}

// Archs lists the architectures built for target and checks arch is one of them.
func (w *Walker) Archs(ctx context.Context, rev revision.Version, platform, target, arch string) ([]string, error) {
	entries, err := w.list(ctx, rev.String(), platform, target)
	if err != nil {
		return nil, err
	}
	archs := listing.Dirs(entries)
	logger.Info("Found archs: %s", strings.Join(archs, ", "))

	if !utils.Includes(archs, arch) {
		return archs, &NotFoundError{
			Kind: KindArch, Want: arch, Revision: rev, Available: archs,
			Context: "for target " + target + " for platform " + platform,
		}
	}
	return archs, nil
}

// Firmwares lists the .bin files of one arch directory, in listing order.
func (w *Walker) Firmwares(ctx context.Context, rev revision.Version, platform, target, arch string) ([]string, error) {
	entries, err := w.list(ctx, rev.String(), platform, target, arch)
	if err != nil {
		return nil, err
	}
	firmwares := utils.Filter(listing.Files(entries), func(name string) bool {
		return strings.HasSuffix(name, firmwareExt)
	})
	logger.Info("Found firmwares: %s", strings.Join(firmwares, ", "))
	return firmwares, nil
}

// PickFirmware returns the first file whose name ends with "<firmware>.bin".
func PickFirmware(files []string, firmware string) (string, bool) {
	suffix := firmware + firmwareExt
	for _, f := range files {
		if strings.HasSuffix(f, suffix) {
			return f, true
		}
	}
	return "", false
}

// Resolve walks the tree for sel at rev. When the target only exists at
// another revision the walk stops with a TargetMovedError naming it.
func (w *Walker) Resolve(ctx context.Context, sel Selection, rev revision.Version, known []revision.Version) (Path, error) {
	lookup, err := w.LookupTarget(ctx, rev, sel.Platform, sel.Target)
	if err != nil {
		return Path{}, err
	}

	if lookup.Status != TargetFound {
		last, err := w.FindLastRevision(ctx, known, rev, sel.Platform, sel.Target)
		if err != nil {
			return Path{}, err
		}
		if last.Status == TargetFound {
			return Path{}, &TargetMovedError{Target: sel.Target, Platform: sel.Platform, Requested: rev, Found: last.Revision}
		}
		return Path{}, &NotFoundError{
			Kind: KindTarget, Want: sel.Target, Revision: rev, Available: lookup.Available,
			Context: "for platform " + sel.Platform,
		}
	}

	if _, err := w.Archs(ctx, rev, sel.Platform, sel.Target, sel.Arch); err != nil {
		return Path{}, err
	}

	firmwares, err := w.Firmwares(ctx, rev, sel.Platform, sel.Target, sel.Arch)
	if err != nil {
		return Path{}, err
	}
	filename, ok := PickFirmware(firmwares, sel.Firmware)
	if !ok {
		return Path{}, &NotFoundError{
			Kind: KindFirmware, Want: sel.Firmware, Revision: rev, Available: firmwares,
			Context: "for target " + sel.Target + " for platform " + sel.Platform,
		}
	}

	return Path{
		Revision: rev,
		Platform: sel.Platform,
		Target:   sel.Target,
		Arch:     sel.Arch,
		Filename: filename,
	}, nil
}
