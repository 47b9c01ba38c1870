// Package api assembles the gin engine: global middleware, the health
// endpoint, and the auth/rate-limited fetch and crawl endpoints. Grounded
// on the teacher's api/router.go wiring order (Recovery → Logger, health
// outside auth, protected group behind Auth+RateLimit).
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brightwell-labs/fetchcore"
	"github.com/brightwell-labs/fetchcore/api/handler"
	"github.com/brightwell-labs/fetchcore/api/middleware"
	"github.com/brightwell-labs/fetchcore/cache"
	"github.com/brightwell-labs/fetchcore/config"
)

// NewRouter creates a configured gin engine with every route and
// middleware wired.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health is intentionally outside auth so monitoring probes always work.
func NewRouter(core *fetchcore.Core, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/v1")

	v1.GET("/health", handler.Health(startTime))

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/fetch", handler.Fetch(core, cc, cfg.Cache.TTL))
	protected.POST("/crawl", handler.Crawl(core))

	return r
}
