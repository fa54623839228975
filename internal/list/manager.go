package list

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/printer"
	"github.com/timvideos/fwfetch/internal/registry"
	"github.com/timvideos/fwfetch/internal/resolver"
	"github.com/timvideos/fwfetch/internal/revision"
	"github.com/timvideos/fwfetch/internal/store"
	"github.com/timvideos/fwfetch/internal/utils"
)

type Lister struct {
	Config   *config.Config
	Listings resolver.Lister
	HTTP     registry.Getter
	Now      func() time.Time
}

func New(cfg *config.Config, l resolver.Lister, h registry.Getter) *Lister {
	return &Lister{Config: cfg, Listings: l, HTTP: h, Now: time.Now}
}

// Revisions renders the archive revisions of sel's user and branch, oldest
// first. limit > 0 keeps only the newest limit revisions.
func (l *Lister) Revisions(ctx context.Context, sel resolver.Selection, limit int) error {
	archive := resolver.ArchiveURL(l.Config.APIBaseURL, l.Config.Repo, sel)
	revs, err := resolver.Revisions(ctx, l.Listings, archive, l.Config.RevisionsTTL)
	if err != nil {
		return err
	}
	if len(revs) == 0 {
		logger.Warn("No revisions found at %s", archive)
		return nil
	}
	if limit > 0 && len(revs) > limit {
		revs = revs[len(revs)-limit:]
	}

	latest, _ := revision.Latest(revs)
	p := printer.NewColorPrinter()
	table := logger.CreateTable([]string{"Revision", "Tag", "Commits", "Hash", "Status"})

	for _, v := range revs {
		name, status := v.String(), ""
		if v == latest {
			name = p.Highlight("%s", name)
			status = p.Success("✓ %s", config.LatestChannel)
		}
		if err := renderRow(table, name, v.Tag, strconv.Itoa(v.Commits), v.Hash, status); err != nil {
			return err
		}
	}
	return render(table)
}

// Channels renders the channel registry, marking channels whose revision is
// not present in the archive of sel's user and branch.
func (l *Lister) Channels(ctx context.Context, sel resolver.Selection) error {
	reg, err := registry.Fetch(ctx, l.HTTP, l.Config.RegistryURL)
	if err != nil {
		return err
	}

	archive := resolver.ArchiveURL(l.Config.APIBaseURL, l.Config.Repo, sel)
	known, err := resolver.Revisions(ctx, l.Listings, archive, l.Config.RevisionsTTL)
	checked := err == nil
	if !checked {
		logger.Debug("archive revisions unavailable, skipping availability check: %v", err)
	}

	rows := latestRows(reg)

	p := printer.NewColorPrinter()
	table := logger.CreateTable([]string{"Channel", "Revision", "Date", "Config", "Notes", "Status"})

	for _, r := range rows {
		status := p.Muted("—")
		if checked {
			status = p.Success("✓ available")
			if !revision.Contains(known, r.Revision) {
				status = p.Error("✗ missing")
			}
		}
		if err := renderRow(table, r.Channel, r.Revision.String(), r.Date, r.Config, r.Notes, status); err != nil {
			return err
		}
	}
	return render(table)
}

// Cache renders the cached listing URLs with their age and payload size.
func (l *Lister) Cache(in store.Inspector) error {
	entries, err := in.Entries()
	if err != nil {
		return fmt.Errorf("an error occurred while reading the cache: %w", err)
	}
	if len(entries) == 0 {
		logger.Info("Cache is empty")
		return nil
	}

	now := l.Now()
	table := logger.CreateTable([]string{"URL", "Age", "Size"})
	for _, url := range utils.SortedKeys(entries) {
		e := entries[url]
		if err := renderRow(table, url, utils.HumanAge(now.Sub(e.Timestamp)), utils.HumanSize(int64(len(e.Payload)))); err != nil {
			return err
		}
	}
	return render(table)
}

// latestRows keeps the last row per channel, sorted by channel name.
func latestRows(reg *registry.Registry) []registry.Row {
	byChannel := make(map[string]registry.Row, len(reg.Rows))
	for _, r := range reg.Rows {
		byChannel[r.Channel] = r
	}
	return utils.Map(utils.SortedKeys(byChannel), func(ch string) registry.Row {
		return byChannel[ch]
	})
}

func renderRow(table *tablewriter.Table, cells ...string) error {
	if err := table.Append(cells); err != nil {
		return fmt.Errorf("an error occurred while appending to the table: %w", err)
	}
	return nil
}

func render(table *tablewriter.Table) error {
	if err := table.Render(); err != nil {
		return fmt.Errorf("an error occurred while rendering the table: %w", err)
	}
	return nil
}
