// Package fetchcore is the composition root: it wires the URL guard,
// session cache, transport, validator, DOM orchestrator, fallback chain,
// cleanup, robots/sitemap, frontier, crawl orchestrator, site configuration,
// and PDF branch into the two operations external callers need — Fetch and
// Crawl — matching spec §6's external-interface surface.
//
// Grounded on the teacher's cmd/purify/main.go wiring order (config →
// scraper → cleaner → cache → router) and the Scraper/Cleaner pairing it
// passes into every handler, generalized here into a single long-lived Core
// value instead of one-off globals, per spec §5's no-global-singletons note.
package fetchcore

import (
	"context"
	"time"

	"github.com/brightwell-labs/fetchcore/crawl"
	"github.com/brightwell-labs/fetchcore/extract"
	"github.com/brightwell-labs/fetchcore/fallback"
	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/pdfextract"
	"github.com/brightwell-labs/fetchcore/siteconfig"
	"github.com/brightwell-labs/fetchcore/transport"
	"github.com/brightwell-labs/fetchcore/validator"
)

// Core holds every process-lifetime resource Fetch and Crawl need: the
// transport (and the session cache it owns), and the site-configuration
// table. Constructible per instance, never a package global.
type Core struct {
	transport *transport.Transport
	sites     *siteconfig.Table
}

// New builds a Core. sites may be nil.
func New(sites *siteconfig.Table) *Core {
	return &Core{transport: transport.New(), sites: sites}
}

// Options configures a single Fetch call (spec §6).
type Options struct {
	Preset         transport.Preset
	Proxy          string
	Timeout        time.Duration
	Cookies        []models.Cookie
	TargetSelector []string
	RemoveSelector []string
	IncludeRawHTML bool
}

// Fetch implements the core fetch operation: transport → validator →
// DOM orchestrator/fallback chain → cleanup, already folded into the
// orchestrator and fallback packages. Returns a tagged-union FetchResult
// (spec §3).
func (c *Core) Fetch(ctx context.Context, rawURL string, opts Options) models.FetchResult {
	started := time.Now()

	resp, ferr := c.transport.Get(ctx, rawURL, transport.Options{
		Preset: opts.Preset, Proxy: opts.Proxy, Timeout: opts.Timeout, Cookies: opts.Cookies,
	})
	if ferr != nil {
		return errResult(rawURL, started, ferr)
	}

	if pdfextract.IsPDFURL(rawURL) || pdfextract.IsPDFContentType(resp.Header("Content-Type")) {
		ext, err := pdfextract.Extract(resp.Body)
		if err != nil {
			return errResult(rawURL, started, models.NewFetchError(models.ErrPDFFetchFailed, err.Error()))
		}
		return okResult(rawURL, started, resp.StatusCode, ext, opts.IncludeRawHTML, resp.Body)
	}

	validErr := validator.Validate(validator.Input{
		Body: resp.Body, StatusCode: resp.StatusCode, ContentType: resp.Headers["Content-Type"],
	}, validator.DefaultChallengeMarkers)

	site := c.siteFor(rawURL)

	orchestrate := func(html, u string) *models.Extraction {
		return extract.Orchestrate(html, u, extract.SiteConfig{
			PreferNextData: site.PreferNextData, PreferJSONLD: site.PreferJSONLD, NextDataPath: site.NextDataPath,
		}, opts.RemoveSelector, opts.TargetSelector)
	}

	ext, fbErr := fallback.Chain(ctx, c.transport, resp.Body, rawURL, validErr, fallback.Site{
		IsMobileAPISite: site.IsMobileAPISite, PreferNextData: site.PreferNextData,
	}, orchestrate)
	if fbErr != nil {
		return errResult(rawURL, started, fbErr)
	}
	return okResult(rawURL, started, resp.StatusCode, ext, opts.IncludeRawHTML, resp.Body)
}

// CrawlOptions configures a Crawl call (spec §6).
type CrawlOptions struct {
	MaxDepth    int
	MaxPages    int
	Concurrency int
	DelayMs     int
	SameOrigin  bool
	Include     []string
	Exclude     []string
	MaxQueued   int
	Fetch       Options
}

// Crawl implements spec §4.K's orchestrator atop Core.Fetch, streaming
// results as they complete and emitting exactly one summary once the
// frontier drains.
func (c *Core) Crawl(ctx context.Context, startURL string, opts CrawlOptions) (<-chan models.CrawlResult, <-chan models.CrawlSummary) {
	rawFetch := func(ctx context.Context, u string) (string, bool) {
		resp, ferr := c.transport.Get(ctx, u, transport.Options{})
		if ferr != nil || !resp.OK {
			return "", false
		}
		return resp.Body, true
	}

	fetchOpts := opts.Fetch
	fetchOpts.IncludeRawHTML = true // link-mode needs RawHTML for discovery

	fetchFn := func(ctx context.Context, u string, wantRawHTML bool) models.FetchResult {
		o := fetchOpts
		o.IncludeRawHTML = wantRawHTML
		return c.Fetch(ctx, u, o)
	}

	return crawl.Crawl(ctx, startURL, crawl.Options{
		MaxDepth: opts.MaxDepth, MaxPages: opts.MaxPages, Concurrency: opts.Concurrency,
		DelayMs: opts.DelayMs, SameOrigin: opts.SameOrigin, Include: opts.Include,
		Exclude: opts.Exclude, MaxQueued: opts.MaxQueued,
	}, rawFetch, fetchFn)
}

// Close releases the Core's idle transport sessions.
func (c *Core) Close() {
	c.transport.Close()
}

func (c *Core) siteFor(rawURL string) siteconfig.Entry {
	if c.sites == nil {
		return siteconfig.Entry{}
	}
	return c.sites.Lookup(rawURL)
}

func okResult(rawURL string, started time.Time, status int, ext *models.Extraction, includeRaw bool, rawHTML string) models.FetchResult {
	res := models.FetchResult{
		Success: true, URL: rawURL, StatusCode: status,
		LatencyMs: time.Since(started).Milliseconds(),
		Ok:        ext, ExtractionMethod: ext.MethodTag,
	}
	if includeRaw {
		res.RawHTML = rawHTML
	}
	return res
}

func errResult(rawURL string, started time.Time, ferr *models.FetchError) models.FetchResult {
	return models.FetchResult{
		Success: false, URL: rawURL, LatencyMs: time.Since(started).Milliseconds(), Err: ferr,
	}
}
