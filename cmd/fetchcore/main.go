// Command fetchcore runs the HTTP API surface (spec §6) atop the fetchcore
// library: config load → structured logging → Core construction → cache →
// router → graceful-shutdown HTTP server. Grounded on the teacher's
// cmd/purify/main.go wiring order, with the browser-launch and
// multi-engine-dispatcher steps dropped (no headless browser in this
// module) and a siteconfig.Table substituted for the teacher's implicit
// per-handler configuration.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightwell-labs/fetchcore"
	"github.com/brightwell-labs/fetchcore/api"
	"github.com/brightwell-labs/fetchcore/cache"
	"github.com/brightwell-labs/fetchcore/config"
	"github.com/brightwell-labs/fetchcore/siteconfig"
)

func main() {
	cfg := config.Load()

	initLogger(cfg.Log)
	slog.Info("fetchcore starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
	)

	core := fetchcore.New(siteconfig.New(nil))
	defer core.Close()

	var cc *cache.Cache
	if cfg.Cache.Enabled {
		// Cleanup sweeps run every TTL; cache.Cache evicts entries older
		// than ten sweep intervals, so a 10m TTL keeps stray entries for
		// ~100m.
		cc = cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)
		defer cc.Close()
	}

	startTime := time.Now()
	router := api.NewRouter(core, cfg, cc, startTime)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("fetchcore stopped")
}

// initLogger configures slog based on LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
