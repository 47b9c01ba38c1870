package crawl

import (
	"context"
	"testing"
	"time"

	"github.com/brightwell-labs/fetchcore/models"
)

func drain(t *testing.T, results <-chan models.CrawlResult, summary <-chan models.CrawlSummary) ([]models.CrawlResult, models.CrawlSummary) {
	t.Helper()
	var got []models.CrawlResult
	timeout := time.After(2 * time.Second)
	for results != nil || summary != nil {
		select {
		case r, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			got = append(got, r)
		case s, ok := <-summary:
			if !ok {
				summary = nil
				continue
			}
			return got, s
		case <-timeout:
			t.Fatal("crawl did not complete in time")
		}
	}
	return got, models.CrawlSummary{}
}

func TestCrawl_RobotsDisallowBlocksMatchingPath(t *testing.T) {
	raw := map[string]struct {
		body string
		ok   bool
	}{
		"https://example.com/robots.txt": {"User-agent: *\nDisallow: /private/\n", true},
	}
	rawFetch := func(_ context.Context, u string) (string, bool) {
		r, ok := raw[u]
		return r.body, ok
	}
	fetch := func(_ context.Context, u string, _ bool) models.FetchResult {
		return models.FetchResult{Success: true, URL: u}
	}

	opts := DefaultOptions()
	opts.MaxDepth = 1
	results, summaryCh := Crawl(context.Background(), "https://example.com/private/secret", opts, rawFetch, fetch)
	got, summary := drain(t, results, summaryCh)

	if len(got) != 0 {
		t.Errorf("expected the disallowed seed to be blocked, got %d results", len(got))
	}
	if summary.PagesBlocked != 1 {
		t.Errorf("expected pages_blocked=1, got %d", summary.PagesBlocked)
	}
}

func TestCrawl_SitemapSourceDisablesLinkDiscovery(t *testing.T) {
	sitemapXML := `<?xml version="1.0"?><urlset><url><loc>https://example.com/a</loc></url><url><loc>https://example.com/b</loc></url></urlset>`
	raw := map[string]struct {
		body string
		ok   bool
	}{
		"https://example.com/robots.txt":  {"Sitemap: https://example.com/sitemap.xml\n", true},
		"https://example.com/sitemap.xml": {sitemapXML, true},
	}
	rawFetch := func(_ context.Context, u string) (string, bool) {
		r, ok := raw[u]
		return r.body, ok
	}
	fetched := map[string]bool{}
	fetch := func(_ context.Context, u string, wantRawHTML bool) models.FetchResult {
		fetched[u] = true
		if wantRawHTML {
			t.Errorf("sitemap-sourced crawl should not request raw HTML for %s", u)
		}
		return models.FetchResult{Success: true, URL: u, RawHTML: `<a href="https://example.com/discovered">x</a>`}
	}

	results, summaryCh := Crawl(context.Background(), "https://example.com/start", DefaultOptions(), rawFetch, fetch)
	got, summary := drain(t, results, summaryCh)

	if summary.Source != models.CrawlSourceSitemap {
		t.Errorf("expected sitemap source, got %s", summary.Source)
	}
	if len(got) != 2 {
		t.Fatalf("expected the two sitemap entries to be crawled, got %d", len(got))
	}
	if fetched["https://example.com/discovered"] {
		t.Error("sitemap-sourced crawl must not follow discovered links")
	}
}

func TestCrawl_LinkModeDiscoversAndEnqueuesLinks(t *testing.T) {
	raw := map[string]struct {
		body string
		ok   bool
	}{}
	rawFetch := func(_ context.Context, u string) (string, bool) {
		r, ok := raw[u]
		return r.body, ok
	}
	fetch := func(_ context.Context, u string, wantRawHTML bool) models.FetchResult {
		if u == "https://example.com/start" {
			return models.FetchResult{Success: true, URL: u, RawHTML: `<a href="/child#frag">c</a><a href="mailto:a@b.com">m</a>`}
		}
		return models.FetchResult{Success: true, URL: u}
	}

	opts := DefaultOptions()
	opts.MaxDepth = 2
	results, summaryCh := Crawl(context.Background(), "https://example.com/start", opts, rawFetch, fetch)
	got, summary := drain(t, results, summaryCh)

	if summary.Source != models.CrawlSourceLinks {
		t.Errorf("expected link source, got %s", summary.Source)
	}
	found := false
	for _, r := range got {
		if r.URL == "https://example.com/child" {
			found = true
			if r.Depth != 1 {
				t.Errorf("expected discovered link at depth 1, got %d", r.Depth)
			}
		}
		if r.URL == "mailto:a@b.com" {
			t.Error("mailto link should have been filtered before enqueue")
		}
	}
	if !found {
		t.Error("expected /child to be discovered and crawled")
	}
}
