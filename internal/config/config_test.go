package config

import (
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvClientID, EnvClientSecret, EnvSandboxClientID, EnvSandboxSecret,
		EnvUseSandbox, EnvRankerEndpoint, EnvScrapeFallback,
		EnvMaxPriceMultiple, EnvCachePath, EnvRefreshSchedule,
	} {
		t.Setenv(name, "")
	}
}

func TestLoadProductionCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvClientID, "prod-id")
	t.Setenv(EnvClientSecret, "prod-secret")
	t.Setenv(EnvSandboxClientID, "sandbox-id")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sandbox {
		t.Errorf("Sandbox = true without EBAY_USE_SANDBOX")
	}
	if cfg.ClientID != "prod-id" || cfg.ClientSecret != "prod-secret" {
		t.Errorf("credentials = %q/%q", cfg.ClientID, cfg.ClientSecret)
	}
	if !cfg.HasCredentials() {
		t.Errorf("HasCredentials = false")
	}
}

func TestLoadSandboxSwitchesCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvUseSandbox, "true")
	t.Setenv(EnvClientID, "prod-id")
	t.Setenv(EnvClientSecret, "prod-secret")
	t.Setenv(EnvSandboxClientID, "sandbox-id")
	t.Setenv(EnvSandboxSecret, "sandbox-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Sandbox {
		t.Errorf("Sandbox = false")
	}
	if cfg.ClientID != "sandbox-id" || cfg.ClientSecret != "sandbox-secret" {
		t.Errorf("sandbox credentials = %q/%q", cfg.ClientID, cfg.ClientSecret)
	}
}

func TestLoadOptionalSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvRankerEndpoint, "http://localhost:8080/rank")
	t.Setenv(EnvScrapeFallback, "true")
	t.Setenv(EnvMaxPriceMultiple, "12.5")
	t.Setenv(EnvCachePath, "/tmp/feed-cache.json")
	t.Setenv(EnvRefreshSchedule, "@every 1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RankerEndpoint != "http://localhost:8080/rank" {
		t.Errorf("RankerEndpoint = %q", cfg.RankerEndpoint)
	}
	if !cfg.ScrapeFallback {
		t.Errorf("ScrapeFallback = false")
	}
	if cfg.MaxOriginalPriceMultiple != 12.5 {
		t.Errorf("MaxOriginalPriceMultiple = %v", cfg.MaxOriginalPriceMultiple)
	}
	if cfg.CachePath != "/tmp/feed-cache.json" {
		t.Errorf("CachePath = %q", cfg.CachePath)
	}
	if cfg.RefreshSchedule != "@every 1h" {
		t.Errorf("RefreshSchedule = %q", cfg.RefreshSchedule)
	}
}

func TestLoadInvalidPriceMultiple(t *testing.T) {
	clearEnv(t)
	for _, raw := range []string{"zero", "-3", "0"} {
		t.Setenv(EnvMaxPriceMultiple, raw)
		if _, err := Load(); err == nil {
			t.Errorf("Load accepted %s=%q", EnvMaxPriceMultiple, raw)
		}
	}
}

func TestHasCredentials(t *testing.T) {
	if (&Config{ClientID: "id"}).HasCredentials() {
		t.Errorf("secret missing, HasCredentials should be false")
	}
	if !(&Config{ClientID: "id", ClientSecret: "secret"}).HasCredentials() {
		t.Errorf("HasCredentials = false with both set")
	}
}
