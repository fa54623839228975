package middleware

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/store"
)

// OpenStore puts the listing cache under CtxKeyStore: the JSON file store, or
// a throwaway in-memory one with --no-cache. It must run after LoadConfig.
func OpenStore(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	cfg, err := Get[*config.Config](cmd, CtxKeyConfig)
	if err != nil {
		return err
	}

	var st store.Store
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		logger.Debug("listing cache disabled")
		st = store.NewMemory()
	} else {
		fs, err := store.NewFS(cfg.CacheFile)
		if err != nil {
			return fmt.Errorf("failed to open listing cache: %w", err)
		}
		st = fs
	}

	ctx := context.WithValue(cmd.Context(), CtxKeyStore, st)
	cmd.SetContext(ctx)

	return next(cmd, args)
}
