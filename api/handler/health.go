// Package handler holds the gin HTTP handlers for the fetchcore API
// surface: /v1/fetch, /v1/crawl, /v1/health. Grounded on the teacher's
// api/handler/{health,scrape,crawl}.go in shape (JSON request binding,
// SSE streaming for long-running operations, a startTime-based uptime
// report), rewritten against fetchcore.Core's synchronous Fetch and
// channel-based Crawl instead of the teacher's browser-pool scraper and
// polled crawl-job store.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthResponse is the /v1/health body.
type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Health returns a handler for GET /v1/health. Kept outside auth so
// monitoring probes always work.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, healthResponse{
			Status: "healthy",
			Uptime: time.Since(startTime).Round(time.Second).String(),
		})
	}
}
