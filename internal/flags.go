package internal

import (
	"github.com/spf13/cobra"
	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/errs"
	"github.com/timvideos/fwfetch/internal/middleware"
	"github.com/timvideos/fwfetch/internal/resolver"
)

// stringFlag returns the flag value when it was set on the command line,
// otherwise fallback (the config file default) when non-empty, otherwise the
// flag's own default.
func stringFlag(cmd *cobra.Command, name, fallback string) string {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		return fallback
	}
	if f.Changed || fallback == "" {
		return f.Value.String()
	}
	return fallback
}

// archiveSelection reads the flags shared by every command that lists the
// archive.
func archiveSelection(cmd *cobra.Command, cfg *config.Config) (resolver.Selection, error) {
	sel := resolver.Selection{
		User:   stringFlag(cmd, "user", cfg.Defaults.User),
		Branch: stringFlag(cmd, "branch", cfg.Defaults.Branch),
	}
	switch {
	case sel.User == "":
		return sel, middleware.FlagComboError(errs.EmptySelection, "user")
	case sel.Branch == "":
		return sel, middleware.FlagComboError(errs.EmptySelection, "branch")
	}
	return sel, nil
}

func selectionFromFlags(cmd *cobra.Command, cfg *config.Config) (resolver.Selection, error) {
	sel, err := archiveSelection(cmd, cfg)
	if err != nil {
		return sel, err
	}

	d := cfg.Defaults
	sel.Revision = stringFlag(cmd, "rev", "")
	sel.Platform = stringFlag(cmd, "platform", "")
	sel.Channel = stringFlag(cmd, "channel", d.Channel)
	sel.Target = stringFlag(cmd, "target", d.Target)
	sel.Firmware = stringFlag(cmd, "firmware", d.Firmware)
	sel.Arch = stringFlag(cmd, "arch", d.Arch)
	sel.Output = stringFlag(cmd, "output", "")

	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return sel, err
	}

	switch {
	case sel.Platform == "":
		return sel, middleware.FlagComboError(errs.MissingPlatform)
	case latest && sel.Revision != "":
		return sel, middleware.FlagComboError(errs.RevWithLatest)
	case latest:
		sel.Channel = config.LatestChannel
	}

	required := []struct{ name, value string }{
		{"target", sel.Target},
		{"firmware", sel.Firmware},
		{"arch", sel.Arch},
	}
	if sel.Revision == "" {
		required = append(required, struct{ name, value string }{"channel", sel.Channel})
	}
	for _, r := range required {
		if r.value == "" {
			return sel, middleware.FlagComboError(errs.EmptySelection, r.name)
		}
	}

	return sel, nil
}
