package download

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/resolver"
	"github.com/timvideos/fwfetch/internal/utils"
)

// ImageURL is the raw-content URL of a resolved firmware file.
func ImageURL(cfg *config.Config, sel resolver.Selection, p resolver.Path) string {
	base := fmt.Sprintf("%s/%s/%s/raw/%s/archive", cfg.RawBaseURL, url.PathEscape(sel.User), url.PathEscape(cfg.Repo), url.PathEscape(cfg.RawRef))
	dir := utils.DirURL(base, sel.Branch, p.Revision.String(), p.Platform, p.Target, p.Arch)
	return dir + url.PathEscape(p.Filename)
}

// OutputName returns sel.Output when set, otherwise the firmware file name
// with the revision, platform, target and arch inserted before its extension:
// firmware.bin -> firmware.v0.0.4-44-g0cd842f.opsis.hdmi2usb.lm32.bin
func OutputName(sel resolver.Selection, p resolver.Path) string {
	if sel.Output != "" {
		return sel.Output
	}

	ext := filepath.Ext(p.Filename)
	parts := []string{strings.TrimSuffix(p.Filename, ext), p.Revision.String(), p.Platform, p.Target, p.Arch}
	if ext != "" {
		parts = append(parts, strings.TrimPrefix(ext, "."))
	}
	return strings.Join(parts, ".")
}
