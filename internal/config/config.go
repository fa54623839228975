package config

import (
	"time"

	"github.com/timvideos/fwfetch/internal/retry"
)

const (
	LatestChannel = "unstable"

	DefaultRegistryURL = "https://docs.google.com/spreadsheets/d/e/2PACX-1vTmqEM-XXPW4oHrJMD7QrCeKOiq1CPng9skQravspmEmaCt04Kz4lTlQLFTyQyJhcjqzCc--eO2f11x/pub?output=csv"
)

// Config is the effective configuration: built-in defaults overlaid with the
// optional YAML file.
type Config struct {
	APIBaseURL  string `yaml:"api_base_url"`
	RawBaseURL  string `yaml:"raw_base_url"`
	Repo        string `yaml:"repo"`
	RawRef      string `yaml:"raw_ref"`
	RegistryURL string `yaml:"registry_url"`

	// RevisionsTTL bounds the age of the cached revision list; new builds land
	// roughly every 20 minutes.
	RevisionsTTL time.Duration `yaml:"revisions_ttl"`
	// ListingTTL bounds deeper listings. Zero serves any cached entry.
	ListingTTL time.Duration `yaml:"listing_ttl"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`
	CacheFile   string        `yaml:"cache_file"`
	UserAgent   string        `yaml:"user_agent"`

	Retry    retry.Config `yaml:"retry"`
	Defaults Defaults     `yaml:"defaults"`
}

// Defaults are the selection values used when the matching flag is not set.
type Defaults struct {
	User     string `yaml:"user"`
	Branch   string `yaml:"branch"`
	Channel  string `yaml:"channel"`
	Target   string `yaml:"target"`
	Firmware string `yaml:"firmware"`
	Arch     string `yaml:"arch"`
}

func Default() Config {
	return Config{
		APIBaseURL:   "https://api.github.com",
		RawBaseURL:   "https://github.com",
		Repo:         "HDMI2USB-firmware-prebuilt",
		RawRef:       "master",
		RegistryURL:  DefaultRegistryURL,
		RevisionsTTL: 20 * time.Minute,
		ListingTTL:   0,
		HTTPTimeout:  30 * time.Second,
		UserAgent:    "fwfetch",
		Retry: retry.Config{
			MaxAttempts: 8,
			InitialWait: time.Second,
			MaxWait:     30 * time.Second,
			Multiplier:  2.0,
			Jitter:      0.1,
		},
		Defaults: DefaultSelection(),
	}
}

func DefaultSelection() Defaults {
	return Defaults{
		User:     "timvideos",
		Branch:   "master",
		Channel:  LatestChannel,
		Target:   "hdmi2usb",
		Firmware: "firmware",
		Arch:     "lm32",
	}
}
