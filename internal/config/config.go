package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvClientID         = "EBAY_CLIENT_ID"
	EnvClientSecret     = "EBAY_CLIENT_SECRET"
	EnvSandboxClientID  = "EBAY_SDXCLIENT_ID"
	EnvSandboxSecret    = "EBAY_SDXCLIENT_SECRET"
	EnvUseSandbox       = "EBAY_USE_SANDBOX"
	EnvRankerEndpoint   = "RANKER_ENDPOINT"
	EnvScrapeFallback   = "SCRAPE_FALLBACK"
	EnvMaxPriceMultiple = "MAX_ORIGINAL_PRICE_MULTIPLE"
	EnvCachePath        = "CACHE_PATH"
	EnvRefreshSchedule  = "HOMEPAGE_REFRESH_SCHEDULE"
)

// Config carries everything the feed service and clients need. Credentials
// come from the environment, optionally seeded from a .env file.
type Config struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool

	RankerEndpoint string
	ScrapeFallback bool

	// MaxOriginalPriceMultiple tunes the implausible-original-price filter.
	// Zero keeps the filter default.
	MaxOriginalPriceMultiple float64

	CachePath string

	// RefreshSchedule is a cron expression for periodic homepage cache
	// refresh. Empty disables scheduling.
	RefreshSchedule string
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; a missing file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Sandbox:         boolEnv(EnvUseSandbox),
		RankerEndpoint:  os.Getenv(EnvRankerEndpoint),
		ScrapeFallback:  boolEnv(EnvScrapeFallback),
		CachePath:       os.Getenv(EnvCachePath),
		RefreshSchedule: os.Getenv(EnvRefreshSchedule),
	}

	if cfg.Sandbox {
		cfg.ClientID = os.Getenv(EnvSandboxClientID)
		cfg.ClientSecret = os.Getenv(EnvSandboxSecret)
	} else {
		cfg.ClientID = os.Getenv(EnvClientID)
		cfg.ClientSecret = os.Getenv(EnvClientSecret)
	}

	if raw := os.Getenv(EnvMaxPriceMultiple); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid %s: %q", EnvMaxPriceMultiple, raw)
		}
		cfg.MaxOriginalPriceMultiple = v
	}

	return cfg, nil
}

// HasCredentials reports whether API credentials are present for the selected
// environment.
func (c *Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func boolEnv(name string) bool {
	v, _ := strconv.ParseBool(os.Getenv(name))
	return v
}
