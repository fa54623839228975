package globalconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/timvideos/fwfetch/internal/config"
	"github.com/timvideos/fwfetch/internal/utils/pathutils"

	"gopkg.in/yaml.v3"
)

const (
	appName       = "fwfetch"
	configDir     = ".config/" + appName
	configFile    = "config.yml"
	cacheFileName = "listings.json"
)

func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

func DefaultConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// GetStateDir returns $XDG_STATE_HOME/fwfetch, falling back to ~/.local/state/fwfetch.
func GetStateDir() (string, error) {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appName), nil
}

// Load returns the built-in defaults overlaid with the YAML file at path.
// An empty path means the default location, which may be absent; an explicit
// path must exist.
func Load(path string) (*config.Config, error) {
	cfg := config.Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	absPath, err := pathutils.ToAbsolutePath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file %s: %w", absPath, err)
		}
	}

	if err := resolveCacheFile(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal renders cfg as YAML, with paths shortened to the "~/..." form.
func Marshal(cfg *config.Config) ([]byte, error) {
	out := *cfg
	out.CacheFile = pathutils.ToHomePathFormat(out.CacheFile)

	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func resolveCacheFile(cfg *config.Config) error {
	if cfg.CacheFile == "" {
		dir, err := GetStateDir()
		if err != nil {
			return err
		}
		cfg.CacheFile = filepath.Join(dir, cacheFileName)
		return nil
	}

	abs, err := pathutils.ToAbsolutePath(cfg.CacheFile)
	if err != nil {
		return fmt.Errorf("failed to resolve cache file path: %w", err)
	}
	cfg.CacheFile = abs
	return nil
}
