// Package registry reads the published channel sheet, a CSV feed mapping
// human channel names to archive revisions.
package registry

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/revision"
	"github.com/timvideos/fwfetch/internal/service"
)

const (
	rowFields = 7
	headerTag = "Link"
)

// Row is one line of the sheet.
type Row struct {
	Source     string
	Date       string
	Revision   revision.Version
	Channel    string
	Config     string
	Notes      string
	ExtraNotes string
}

type Registry struct {
	Rows     []Row
	Channels map[string]revision.Version
}

// Lookup returns the revision a channel points at.
func (r *Registry) Lookup(channel string) (revision.Version, bool) {
	v, ok := r.Channels[channel]
	return v, ok
}

// Getter is the part of service.Fetcher the registry needs.
type Getter interface {
	Get(ctx context.Context, url string) (service.Response, error)
}

// Fetch downloads and parses the sheet at url.
func Fetch(ctx context.Context, http Getter, url string) (*Registry, error) {
	logger.Debug("fetching channel registry %s", url)

	resp, err := http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch channel registry: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetch channel registry: unexpected status %d", resp.Status)
	}

	return Parse(bytes.NewReader(resp.Body))
}

// Parse reads the sheet. Rows without exactly seven fields and rows with an
// empty revision are skipped; when a channel appears twice the later row wins.
func Parse(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	reg := &Registry{Channels: make(map[string]revision.Version)}

	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse channel registry: %w", err)
		}

		if isBlank(record) || record[0] == headerTag {
			continue
		}
		if len(record) != rowFields {
			logger.Warn("Skipping registry row %d (%d fields, want %d): %v", line, len(record), rowFields, record)
			continue
		}

		revStr := strings.TrimSpace(record[2])
		if revStr == "" {
			logger.Debug("registry row %d has no revision, skipping: %v", line, record)
			continue
		}

		rev, err := revision.Parse(revStr)
		if err != nil {
			return nil, fmt.Errorf("channel registry row %d: %w", line, err)
		}

		row := Row{
			Source:     record[0],
			Date:       record[1],
			Revision:   rev,
			Channel:    record[3],
			Config:     record[4],
			Notes:      record[5],
			ExtraNotes: record[6],
		}
		logger.Debug("registry: %s -> %s", row.Channel, row.Revision)

		reg.Rows = append(reg.Rows, row)
		reg.Channels[row.Channel] = row.Revision
	}

	return reg, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
