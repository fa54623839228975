package internal

import (
	"fmt"

	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/list"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/middleware"
	"github.com/timvideos/fwfetch/internal/prompter"
	"github.com/timvideos/fwfetch/internal/store"
	"github.com/timvideos/fwfetch/internal/utils/pathutils"

	"github.com/spf13/cobra"
)

func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the listing cache",
	}

	chain := middleware.UseMiddlewareChain(middleware.LoadConfig, middleware.OpenStore)
	cmd.AddCommand(chain(newCacheListCmd)(), chain(newCacheClearCmd)())
	return cmd
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show cached listing URLs with their age and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, in, err := cacheInspector(cmd)
			if err != nil {
				return err
			}

			return list.New(cfg, nil, nil).Cache(in)
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached listing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, in, err := cacheInspector(cmd)
			if err != nil {
				return err
			}

			entries, err := in.Entries()
			if err != nil {
				return fmt.Errorf("an error occurred while reading the cache: %w", err)
			}
			if len(entries) == 0 {
				logger.Info("Cache is already empty")
				return nil
			}

			yes, err := cmd.Flags().GetBool("yes")
			if err != nil {
				return err
			}
			var confirm prompter.Confirmer = prompter.Always(true)
			if !yes {
				confirm = prompter.New(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			ok, err := confirm.Confirm(fmt.Sprintf("Remove %d cached listings?", len(entries)))
			if err != nil {
				return err
			}
			if !ok {
				logger.Info("Cache left untouched")
				return nil
			}

			if err := in.Clear(); err != nil {
				return fmt.Errorf("an error occurred while clearing the cache: %w", err)
			}

			logger.Success("Removed %d cached listings from %s", len(entries), pathutils.ToHomePathFormat(cfg.CacheFile))
			return nil
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func cacheInspector(cmd *cobra.Command) (*config.Config, store.Inspector, error) {
	cfg, err := middleware.Get[*config.Config](cmd, middleware.CtxKeyConfig)
	if err != nil {
		return nil, nil, err
	}
	st, err := middleware.Get[store.Store](cmd, middleware.CtxKeyStore)
	if err != nil {
		return nil, nil, err
	}

	in, ok := st.(store.Inspector)
	if !ok {
		return nil, nil, fmt.Errorf("listing cache %T cannot be inspected", st)
	}
	return cfg, in, nil
}
