package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brightwell-labs/fetchcore"
	"github.com/brightwell-labs/fetchcore/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Mode = gin.TestMode
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"test-key"}
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.Burst = 1000
	cfg.Cache.Enabled = false
	return cfg
}

func TestNewRouter_HealthIsUnauthenticated(t *testing.T) {
	core := fetchcore.New(nil)
	defer core.Close()
	r := NewRouter(core, testConfig(), nil, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected /v1/health to bypass auth, got %d", w.Code)
	}
}

func TestNewRouter_FetchRequiresAPIKey(t *testing.T) {
	core := fetchcore.New(nil)
	defer core.Close()
	r := NewRouter(core, testConfig(), nil, time.Now())

	req := httptest.NewRequest(http.MethodPost, "/v1/fetch", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected /v1/fetch to require auth, got %d", w.Code)
	}
}
