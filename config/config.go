// Package config loads process configuration from environment variables,
// grounded on the teacher's config.Config + envOr/envIntOr/envDurationOr
// helper family, with the field set replaced end to end: the teacher's
// browser/adaptive-pool/engine-racing knobs are gone (no headless browser or
// multi-engine dispatcher in this module), replaced with this spec's SSRF,
// session, crawl, and preset knobs.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all process configuration.
type Config struct {
	Server    ServerConfig
	Transport TransportConfig
	Session   SessionConfig
	Crawl     CrawlConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server (cmd/fetchcore).
type ServerConfig struct {
	Host string // default "0.0.0.0"
	Port int    // default 8080
	Mode string // "debug", "release", "test"; default "release"
}

// TransportConfig controls default HTTP behavior (spec §4.C).
type TransportConfig struct {
	DefaultTimeout  time.Duration // default 10s
	MaxTimeout      time.Duration // default 60s
	DefaultPreset   string        // default "CHROME_143"
	DefaultProxy    string
	DNSTimeout      time.Duration // default 5s
	MaxResponseSize int64         // default 10 MiB
}

// SessionConfig controls the session cache's recycling policy (spec §4.B).
type SessionConfig struct {
	MaxAge      time.Duration // default 1h
	MaxRequests int64         // default 10_000
}

// CrawlConfig controls crawl defaults (spec §4.K / §6).
type CrawlConfig struct {
	DefaultMaxDepth    int  // default 3
	DefaultConcurrency int  // default 5
	DefaultDelayMs     int  // default 0
	DefaultSameOrigin  bool // default true
}

// AuthConfig controls API key authentication on the HTTP surface.
type AuthConfig struct {
	Enabled bool // default true
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting on the HTTP surface.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default 5
	Burst             int     // default 10
}

// CacheConfig controls the optional response cache in front of the API
// surface (component outside the core fetch/crawl functions; spec §5's
// no-global-singletons note keeps it an explicit, constructible instance).
type CacheConfig struct {
	Enabled    bool // default true
	MaxEntries int  // default 1000
	TTL        time.Duration // default 10m
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default "info"
	Format string // "json" or "text"; default "json"
}

// Load reads configuration from environment variables with sane defaults.
// All keys are prefixed FETCHCORE_.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("FETCHCORE_HOST", "0.0.0.0"),
			Port: envIntOr("FETCHCORE_PORT", 8080),
			Mode: envOr("FETCHCORE_MODE", "release"),
		},
		Transport: TransportConfig{
			DefaultTimeout:  envDurationOr("FETCHCORE_DEFAULT_TIMEOUT", 10*time.Second),
			MaxTimeout:      envDurationOr("FETCHCORE_MAX_TIMEOUT", 60*time.Second),
			DefaultPreset:   envOr("FETCHCORE_DEFAULT_PRESET", "CHROME_143"),
			DefaultProxy:    os.Getenv("FETCHCORE_PROXY"),
			DNSTimeout:      envDurationOr("FETCHCORE_DNS_TIMEOUT", 5*time.Second),
			MaxResponseSize: envInt64Or("FETCHCORE_MAX_RESPONSE_SIZE", 10*1024*1024),
		},
		Session: SessionConfig{
			MaxAge:      envDurationOr("FETCHCORE_SESSION_MAX_AGE", time.Hour),
			MaxRequests: envInt64Or("FETCHCORE_SESSION_MAX_REQUESTS", 10_000),
		},
		Crawl: CrawlConfig{
			DefaultMaxDepth:    envIntOr("FETCHCORE_CRAWL_MAX_DEPTH", 3),
			DefaultConcurrency: envIntOr("FETCHCORE_CRAWL_CONCURRENCY", 5),
			DefaultDelayMs:     envIntOr("FETCHCORE_CRAWL_DELAY_MS", 0),
			DefaultSameOrigin:  envBoolOr("FETCHCORE_CRAWL_SAME_ORIGIN", true),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FETCHCORE_AUTH_ENABLED", true),
			APIKeys: envSliceOr("FETCHCORE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FETCHCORE_RATE_RPS", 5.0),
			Burst:             envIntOr("FETCHCORE_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			Enabled:    envBoolOr("FETCHCORE_CACHE_ENABLED", true),
			MaxEntries: envIntOr("FETCHCORE_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("FETCHCORE_CACHE_TTL", 10*time.Minute),
		},
		Log: LogConfig{
			Level:  envOr("FETCHCORE_LOG_LEVEL", "info"),
			Format: envOr("FETCHCORE_LOG_FORMAT", "json"),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
