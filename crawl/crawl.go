// Package crawl implements the crawl orchestrator (spec §4.K): robots/sitemap
// discovery, a sliding-window concurrent frontier walk, link harvesting in
// link-mode, and CrawlResult/CrawlSummary emission.
//
// The sliding-window driver is grounded on the teacher's engine/dispatcher.go
// concurrency shape (goroutine per in-flight item, a shared completion
// channel, a single owning goroutine deciding what to dispatch next) adapted
// from "race N engines for one URL" to "keep N frontier items in flight at
// once". The frontier itself is never touched outside the driver goroutine,
// per rohmanhakim-docs-crawler's scheduler-is-sole-admission-authority note.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/frontier"
	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/robots"
)

// defaultConcurrency and defaultMaxDepth match spec.md's stated defaults.
const (
	defaultConcurrency = 5
	defaultMaxDepth    = 3
)

// Options configures a Crawl call (spec §4.K / §6).
type Options struct {
	MaxDepth    int
	MaxPages    int
	Concurrency int
	DelayMs     int
	SameOrigin  bool
	Include     []string
	Exclude     []string
	MaxQueued   int
}

// DefaultOptions fills in spec.md's stated defaults.
func DefaultOptions() Options {
	return Options{MaxDepth: defaultMaxDepth, Concurrency: defaultConcurrency, SameOrigin: true}
}

// RawFetchFunc fetches a URL's raw body for robots/sitemap discovery,
// reporting ok=false on any non-2xx status or transport error. Separate from
// FetchFunc because robots/sitemap fetches never run through the extraction
// pipeline.
type RawFetchFunc func(ctx context.Context, rawURL string) (body string, ok bool)

// FetchFunc runs the full fetch pipeline (transport → validator →
// orchestrator/fallback → cleanup) for one crawled URL. wantRawHTML requests
// that FetchResult.RawHTML be populated, needed in link-mode to discover
// outbound links. Injected so crawl never imports transport/fallback/extract
// directly and stays free of import cycles with the composition root that
// wires those together.
type FetchFunc func(ctx context.Context, rawURL string, wantRawHTML bool) models.FetchResult

var schemeBlocklist = map[string]bool{
	"mailto": true, "tel": true, "javascript": true,
	"data": true, "blob": true, "file": true, "ftp": true,
}

// Crawl runs spec §4.K's orchestrator and returns a lazy result stream plus a
// single summary emitted after the frontier drains. Both channels are closed
// by the driver goroutine when the crawl completes.
func Crawl(ctx context.Context, startURL string, opts Options, rawFetch RawFetchFunc, fetch FetchFunc) (<-chan models.CrawlResult, <-chan models.CrawlSummary) {
	results := make(chan models.CrawlResult)
	summary := make(chan models.CrawlSummary, 1)
	go run(ctx, startURL, opts, rawFetch, fetch, results, summary)
	return results, summary
}

func run(ctx context.Context, startURL string, opts Options, rawFetch RawFetchFunc, fetch FetchFunc, results chan<- models.CrawlResult, summary chan<- models.CrawlSummary) {
	defer close(results)
	defer close(summary)

	started := time.Now()
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	origin, err := originOf(startURL)
	if err != nil {
		summary <- models.CrawlSummary{StartURL: startURL, DurationMs: time.Since(started).Milliseconds()}
		return
	}

	rules := fetchRobots(ctx, origin, rawFetch)

	sitemapURLs := rules.SitemapURLs
	if len(sitemapURLs) == 0 {
		if _, ok := rawFetch(ctx, origin+"/sitemap.xml"); ok {
			sitemapURLs = []string{origin + "/sitemap.xml"}
		}
	}

	var entries []models.SitemapEntry
	if len(sitemapURLs) > 0 {
		entries = robots.FetchSitemapEntries(sitemapURLs, wrapRawFetch(ctx, rawFetch))
	}

	fr, source, linkMode, err := buildFrontier(startURL, opts, entries)
	if err != nil {
		summary <- models.CrawlSummary{StartURL: startURL, Source: source, DurationMs: time.Since(started).Milliseconds()}
		return
	}

	var pagesTotal, pagesSuccess, pagesFailed, pagesBlocked int

	type completion struct {
		result models.CrawlResult
		links  []string
	}
	completions := make(chan completion)
	inflight := 0

	for {
		for inflight < concurrency {
			entry, ok := fr.Next()
			if !ok {
				break
			}
			pagesTotal++
			if !rules.IsAllowed(pathOf(entry.NormalizedURL)) {
				pagesBlocked++
				continue
			}
			inflight++
			go func(entry models.FrontierEntry) {
				if opts.DelayMs > 0 {
					select {
					case <-time.After(time.Duration(opts.DelayMs) * time.Millisecond):
					case <-ctx.Done():
					}
				}
				res := fetch(ctx, entry.NormalizedURL, linkMode)
				var links []string
				if linkMode && res.Success && res.RawHTML != "" {
					links = extractLinks(entry.NormalizedURL, res.RawHTML)
				}
				completions <- completion{
					result: models.CrawlResult{FetchResult: res, Depth: entry.Depth},
					links:  links,
				}
			}(entry)
		}

		if inflight == 0 {
			break
		}

		c := <-completions
		inflight--

		if linkMode && len(c.links) > 0 {
			fr.AddAll(c.links, c.result.Depth+1)
		}
		if c.result.Success {
			pagesSuccess++
		} else {
			pagesFailed++
		}

		select {
		case results <- c.result:
		case <-ctx.Done():
		}
	}

	summary <- models.CrawlSummary{
		PagesTotal:   pagesTotal,
		PagesSuccess: pagesSuccess,
		PagesFailed:  pagesFailed,
		PagesBlocked: pagesBlocked,
		DurationMs:   time.Since(started).Milliseconds(),
		Source:       source,
		StartURL:     startURL,
	}
}

// fetchRobots fetches <origin>/robots.txt, treating any failure (404
// included — rawFetch reports ok=false for non-2xx) as an unrestricted crawl.
func fetchRobots(ctx context.Context, origin string, rawFetch RawFetchFunc) models.RobotsRules {
	body, ok := rawFetch(ctx, origin+"/robots.txt")
	if !ok {
		return models.RobotsRules{}
	}
	return robots.ParseRobots(body)
}

func wrapRawFetch(ctx context.Context, rawFetch RawFetchFunc) robots.FetchFunc {
	return func(u string) ([]byte, error) {
		body, ok := rawFetch(ctx, u)
		if !ok {
			return nil, fmt.Errorf("crawl: fetch failed for %s", u)
		}
		return []byte(body), nil
	}
}

// buildFrontier implements spec §4.K steps 3-4: sitemap-sourced crawls use
// max_depth=0 and disable link discovery; link-mode crawls use the caller's
// max_depth (default 3) seeded with the start URL.
func buildFrontier(startURL string, opts Options, entries []models.SitemapEntry) (*frontier.Frontier, models.CrawlSource, bool, error) {
	sameOrigin := opts.SameOrigin

	if len(entries) > 0 {
		fr, err := frontier.New(startURL, frontier.Options{
			SameOrigin: sameOrigin,
			MaxDepth:   0,
			MaxPages:   opts.MaxPages,
			MaxQueued:  opts.MaxQueued,
			Include:    opts.Include,
			Exclude:    opts.Exclude,
		})
		if err != nil {
			return nil, models.CrawlSourceSitemap, false, err
		}
		locs := make([]string, len(entries))
		for i, e := range entries {
			locs[i] = e.Loc
		}
		fr.AddAll(locs, 0)
		return fr, models.CrawlSourceSitemap, false, nil
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	fr, err := frontier.New(startURL, frontier.Options{
		SameOrigin: sameOrigin,
		MaxDepth:   maxDepth,
		MaxPages:   opts.MaxPages,
		MaxQueued:  opts.MaxQueued,
		Include:    opts.Include,
		Exclude:    opts.Exclude,
	})
	if err != nil {
		return nil, models.CrawlSourceLinks, true, err
	}
	fr.Add(startURL, 0)
	return fr, models.CrawlSourceLinks, true, nil
}

// extractLinks harvests <a href> targets from rawHTML, absolute-resolving
// against pageURL, stripping fragments, filtering out non-crawlable schemes,
// and deduplicating (spec §4.K step 5).
func extractLinks(pageURL, rawHTML string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if schemeBlocklist[strings.ToLower(resolved.Scheme)] {
			return
		}
		resolved.Fragment = ""
		abs := resolved.String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	})
	return out
}

func originOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("crawl: %q is not an absolute URL", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

func pathOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Path == "" {
		return "/"
	}
	return u.Path
}
