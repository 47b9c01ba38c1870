package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/brightwell-labs/fetchcore"
	"github.com/brightwell-labs/fetchcore/cache"
	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/transport"
)

// fetchRequest mirrors spec §6's fetch option keys.
type fetchRequest struct {
	URL            string            `json:"url" binding:"required"`
	Preset         string            `json:"preset"`
	TimeoutMs      int               `json:"timeout_ms"`
	Proxy          string            `json:"proxy"`
	Cookies        map[string]string `json:"cookies"`
	CookieFile     string            `json:"cookie_file"`
	TargetSelector []string          `json:"target_selector"`
	RemoveSelector []string          `json:"remove_selector"`
	IncludeRawHTML bool              `json:"include_raw_html"`
}

// Fetch returns a handler for POST /v1/fetch. cc and ttl may be zero-valued
// (nil cache, ttl<=0) to disable caching — cache.Get already treats ttl<=0
// as an always-miss.
func Fetch(core *fetchcore.Core, cc *cache.Cache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req fetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		opts := fetchcore.Options{
			Preset:         transport.Preset(req.Preset),
			Proxy:          req.Proxy,
			TargetSelector: req.TargetSelector,
			RemoveSelector: req.RemoveSelector,
			IncludeRawHTML: req.IncludeRawHTML,
			Cookies:        cookiesFor(req),
		}
		if req.TimeoutMs > 0 {
			opts.Timeout = time.Duration(req.TimeoutMs) * time.Millisecond
		}

		// Caching only applies to cookie-less, proxy-less requests — a
		// personalized or proxied fetch is never safe to serve from a shared
		// cache entry keyed only on URL and selectors.
		cacheable := cc != nil && len(opts.Cookies) == 0 && opts.Proxy == ""
		var cacheKey string
		if cacheable {
			cacheKey = cache.Key(req.URL, string(opts.Preset), fmt.Sprint(opts.TargetSelector), fmt.Sprint(opts.RemoveSelector))
			if cached, hit := cc.Get(cacheKey, ttl); hit {
				c.JSON(statusFor(cached), cached)
				return
			}
		}

		result := core.Fetch(c.Request.Context(), req.URL, opts)
		if cacheable && result.Success {
			cc.Set(cacheKey, result)
		}
		c.JSON(statusFor(result), result)
	}
}

// cookiesFor resolves both cookie sources a fetch request may carry: an
// inline name→value map, and a Netscape-format cookie jar filtered down to
// what req.URL's host/path/scheme would actually receive.
func cookiesFor(req fetchRequest) []models.Cookie {
	var cookies []models.Cookie
	if req.CookieFile != "" {
		parsed := transport.ParseNetscapeCookieFile(req.CookieFile)
		if u, err := url.Parse(req.URL); err == nil {
			parsed = transport.FilterCookies(parsed, u.Hostname(), u.Path, u.Scheme == "https")
		}
		cookies = append(cookies, parsed...)
	}
	for name, value := range req.Cookies {
		cookies = append(cookies, models.Cookie{Name: name, Value: value})
	}
	return cookies
}

func statusFor(result models.FetchResult) int {
	if result.Success {
		return http.StatusOK
	}
	if result.Err == nil {
		return http.StatusInternalServerError
	}
	switch result.Err.Kind {
	case models.ErrSSRFBlocked, models.ErrInvalidProxy:
		return http.StatusForbidden
	case models.ErrRateLimited:
		return http.StatusTooManyRequests
	case models.ErrHTTPStatus, models.ErrWrongContentType, models.ErrBodyTooSmall,
		models.ErrInsufficientContent, models.ErrChallengeDetected, models.ErrAccessRestricted:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
