package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/download"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/middleware"
	"github.com/timvideos/fwfetch/internal/store"
)

// Version is overridden at build time with -ldflags "-X ...internal.Version=".
var Version = "dev"

func NewRootCmd() *cobra.Command {
	cmd := middleware.UseMiddlewareChain(middleware.LoadConfig, middleware.OpenStore)(newDownloadCmd)()

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Config file (default ~/.config/fwfetch/config.yml)")
	pf.String("cache-file", "", "Listing cache file (default $XDG_STATE_HOME/fwfetch/listings.json)")
	pf.Bool("no-cache", false, "Do not read or write the listing cache")
	pf.String("user", config.DefaultSelection().User, "GitHub user to download from")
	pf.String("branch", config.DefaultSelection().Branch, "Branch to download from")
	pf.CountVarP(&logger.FlagVerboseCount, "verbose", "V", "Verbose output (debug)")
	pf.BoolVarP(&logger.FlagQuiet, "quiet", "q", false, "Only print errors")
	pf.BoolVarP(&logger.FlagSilent, "silent", "s", false, "Print nothing")
	pf.BoolVar(&logger.FlagJSON, "json", false, "Log as JSON")

	cmd.PersistentPreRun = func(*cobra.Command, []string) {
		logger.ConfigureLoggerFromFlags()
	}
	cmd.SetGlobalNormalizationFunc(flagAliases)

	RegisterSubCommands(cmd)

	return cmd
}

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fwfetch --platform PLATFORM [flags]",
		Short: "Download prebuilt HDMI2USB firmware",
		Long: `fwfetch finds a prebuilt firmware image in the HDMI2USB-firmware-prebuilt archive and downloads it.

The revision comes from --rev, or from a release channel (--channel, default "unstable",
which always means the newest revision). The archive is then walked
platform -> target -> arch -> firmware file, printing what it finds at each level.

--board is an alias for --platform and --tag an alias for --channel.`,
		Example: `  fwfetch --platform opsis
  fwfetch --board atlys --target hdmi2usb --arch lm32 --firmware firmware
  fwfetch --platform opsis --rev v0.0.4-44-g0cd842f -o opsis.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", Version)
				return err
			}

			cfg, err := middleware.Get[*config.Config](cmd, middleware.CtxKeyConfig)
			if err != nil {
				return err
			}
			st, err := middleware.Get[store.Store](cmd, middleware.CtxKeyStore)
			if err != nil {
				return err
			}

			sel, err := selectionFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			dryRun, err := cmd.Flags().GetBool("dry-run")
			if err != nil {
				return err
			}

			fetcher, lister := newClients(cfg, st)
			_, err = download.New(cfg, lister, fetcher).Execute(cmd.Context(), sel, dryRun)
			return err
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	d := config.DefaultSelection()
	f := cmd.Flags()
	f.String("rev", "", "Download an exact revision")
	f.String("platform", "", "Platform: board + expansion boards configuration (required)")
	f.String("channel", d.Channel, "Release channel to take the revision from")
	f.Bool("latest", false, "Download the newest revision (same as --channel "+config.LatestChannel+")")
	f.String("target", d.Target, "Firmware target")
	f.String("firmware", d.Firmware, "Firmware file base name")
	f.String("arch", d.Arch, "Soft-CPU architecture")
	f.StringP("output", "o", "", "Output file name (default <firmware>.<rev>.<platform>.<target>.<arch>.bin)")
	f.Bool("dry-run", false, "Resolve and print the image URL without downloading")
	f.BoolP("version", "v", false, "Print version information")

	return cmd
}

func flagAliases(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "board":
		name = "platform"
	case "tag":
		name = "channel"
	}
	return pflag.NormalizedName(name)
}

func Execute() error {
	// Configured again once flags are parsed; this covers flag parse errors.
	logger.ConfigureLoggerFromFlags()
	root := NewRootCmd()

	if os.Getenv("COMP_LINE") != "" ||
		(len(os.Args) > 1 && strings.HasPrefix(os.Args[1], "__complete")) {
		return root.Execute()
	}

	if err := root.Execute(); err != nil {
		logger.Debug("Failed to execute root command: %v", err)
		return err
	}
	return nil
}
