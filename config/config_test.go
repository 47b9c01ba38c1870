package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenUnset(t *testing.T) {
	for _, k := range []string{"FETCHCORE_PORT", "FETCHCORE_CRAWL_CONCURRENCY", "FETCHCORE_API_KEYS"} {
		os.Unsetenv(k)
	}
	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Crawl.DefaultConcurrency != 5 {
		t.Errorf("expected default concurrency 5, got %d", cfg.Crawl.DefaultConcurrency)
	}
	if cfg.Auth.APIKeys != nil {
		t.Errorf("expected nil API keys by default, got %v", cfg.Auth.APIKeys)
	}
	if cfg.Transport.DefaultTimeout != 10*time.Second {
		t.Errorf("expected default transport timeout 10s, got %s", cfg.Transport.DefaultTimeout)
	}
}

func TestLoad_ReadsOverridesFromEnv(t *testing.T) {
	os.Setenv("FETCHCORE_PORT", "9090")
	os.Setenv("FETCHCORE_API_KEYS", "key-a, key-b")
	os.Setenv("FETCHCORE_CRAWL_SAME_ORIGIN", "false")
	defer func() {
		os.Unsetenv("FETCHCORE_PORT")
		os.Unsetenv("FETCHCORE_API_KEYS")
		os.Unsetenv("FETCHCORE_CRAWL_SAME_ORIGIN")
	}()

	cfg := Load()
	if cfg.Server.Port != 9090 {
		t.Errorf("expected overridden port 9090, got %d", cfg.Server.Port)
	}
	if len(cfg.Auth.APIKeys) != 2 || cfg.Auth.APIKeys[0] != "key-a" || cfg.Auth.APIKeys[1] != "key-b" {
		t.Errorf("expected trimmed two-key slice, got %v", cfg.Auth.APIKeys)
	}
	if cfg.Crawl.DefaultSameOrigin {
		t.Error("expected same_origin override to be read as false")
	}
}

func TestLoad_InvalidEnvValueFallsBackToDefault(t *testing.T) {
	os.Setenv("FETCHCORE_PORT", "not-a-number")
	defer os.Unsetenv("FETCHCORE_PORT")

	cfg := Load()
	if cfg.Server.Port != 8080 {
		t.Errorf("expected fallback to default on unparseable value, got %d", cfg.Server.Port)
	}
}
