package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ToHomePathFormat shortens path to a "~/..." form for display.
func ToHomePathFormat(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}

	if strings.HasPrefix(path, home) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}

// ToAbsolutePath expands a leading "~" to the user's home directory.
func ToAbsolutePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
