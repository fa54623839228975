package utils

import "github.com/timvideos/fwfetch/internal/logger"

// Try runs a deferred cleanup and logs its failure instead of dropping it.
func Try(f func() error) {
	if err := f(); err != nil {
		logger.Debug("deferred cleanup failed: %v", err)
	}
}
