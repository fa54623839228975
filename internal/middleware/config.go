package middleware

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/timvideos/fwfetch/internal/globalconfig"
	"github.com/timvideos/fwfetch/internal/logger"
	"github.com/timvideos/fwfetch/internal/utils/pathutils"
)

// LoadConfig loads the YAML config named by --config (or the default
// location), applies --cache-file and stores the result under CtxKeyConfig.
func LoadConfig(cmd *cobra.Command, args []string, next func(cmd *cobra.Command, args []string) error) error {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := globalconfig.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if f := cmd.Flags().Lookup("cache-file"); f != nil && f.Changed {
		abs, err := pathutils.ToAbsolutePath(f.Value.String())
		if err != nil {
			return fmt.Errorf("failed to resolve cache file path: %w", err)
		}
		cfg.CacheFile = abs
	}
	logger.Debug("using cache file %s", cfg.CacheFile)

	ctx := context.WithValue(cmd.Context(), CtxKeyConfig, cfg)
	cmd.SetContext(ctx)

	return next(cmd, args)
}
