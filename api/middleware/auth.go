// Package middleware holds gin middleware for the HTTP API surface:
// API-key auth and per-identity rate limiting. Grounded on the teacher's
// api/middleware/{auth,ratelimit}.go, reused near-verbatim in shape; the
// teacher's ScrapeResponse/ErrorDetail error-body type is dropped in favor
// of a minimal ad hoc JSON body, since FetchError's closed ErrorKind
// vocabulary (spec §7) describes fetch/crawl outcomes, not HTTP-layer
// auth/rate-limit rejections.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Auth returns API-key authentication middleware supporting two header
// styles: X-API-Key: <key>, and Authorization: Bearer <key>. If apiKeys is
// empty, the middleware is a no-op (open access).
func Auth(apiKeys []string) gin.HandlerFunc {
	if len(apiKeys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keySet := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keySet[k] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		key := extractAPIKey(c)
		if key == "" {
			abort(c, http.StatusUnauthorized, "missing API key: provide X-API-Key header or Authorization: Bearer <key>")
			return
		}
		if _, valid := keySet[key]; !valid {
			abort(c, http.StatusUnauthorized, "invalid API key")
			return
		}
		c.Set("api_key", key)
		c.Next()
	}
}

func extractAPIKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
