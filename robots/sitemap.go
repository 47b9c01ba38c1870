package robots

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/brightwell-labs/fetchcore/models"
)

const defaultMaxSitemapEntries = 10000
const maxNestedSitemapDepth = 3

type xmlURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []xmlURLEntry `xml:"url"`
}

type xmlURLEntry struct {
	Loc      string `xml:"loc"`
	LastMod  string `xml:"lastmod"`
	Priority string `xml:"priority"`
}

type xmlSitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	Sitemaps []xmlSitemapEntry `xml:"sitemap"`
}

type xmlSitemapEntry struct {
	Loc string `xml:"loc"`
}

// ParseSitemap detects <urlset> vs <sitemapindex> and returns either leaf
// SitemapEntry records or nested sitemap URLs (caller follows those
// separately — see FetchSitemapEntries).
func ParseSitemap(data []byte, maxEntries int) (entries []models.SitemapEntry, nestedSitemaps []string, err error) {
	if maxEntries <= 0 {
		maxEntries = defaultMaxSitemapEntries
	}

	var urlset xmlURLSet
	if err := xml.Unmarshal(data, &urlset); err == nil && len(urlset.URLs) > 0 {
		for _, u := range urlset.URLs {
			parsed, perr := url.Parse(u.Loc)
			if perr != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
				continue
			}
			var priority *float64
			if p, perr := strconv.ParseFloat(u.Priority, 64); perr == nil {
				priority = &p
			}
			entries = append(entries, models.SitemapEntry{Loc: u.Loc, LastMod: u.LastMod, Priority: priority})
			if len(entries) >= maxEntries {
				break
			}
		}
		return entries, nil, nil
	}

	var index xmlSitemapIndex
	if err := xml.Unmarshal(data, &index); err == nil && len(index.Sitemaps) > 0 {
		for _, s := range index.Sitemaps {
			parsed, perr := url.Parse(s.Loc)
			if perr != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
				continue
			}
			nestedSitemaps = append(nestedSitemaps, s.Loc)
		}
		return nil, nestedSitemaps, nil
	}

	return nil, nil, fmt.Errorf("robots: xml is neither a urlset nor a sitemapindex")
}

// FetchFunc retrieves raw bytes for a URL (the transport layer, injected to
// avoid a package cycle per spec §9's cycle-avoidance design note).
type FetchFunc func(url string) ([]byte, error)

// FetchSitemapEntries treats each seed URL as a sitemap, recursing into
// nested sitemap indexes up to maxNestedSitemapDepth. A nested sitemap is
// rejected if its origin differs from its parent's origin, preventing
// amplification/exfiltration via an attacker-controlled index.
func FetchSitemapEntries(seedURLs []string, fetch FetchFunc) []models.SitemapEntry {
	var all []models.SitemapEntry
	for _, seed := range seedURLs {
		all = append(all, fetchSitemapRecursive(seed, seed, 0, fetch)...)
	}
	return all
}

func fetchSitemapRecursive(sitemapURL, parentOrigin string, depth int, fetch FetchFunc) []models.SitemapEntry {
	if depth > maxNestedSitemapDepth {
		return nil
	}
	if depth > 0 && origin(sitemapURL) != origin(parentOrigin) {
		return nil
	}

	data, err := fetch(sitemapURL)
	if err != nil {
		return nil
	}

	entries, nested, err := ParseSitemap(data, defaultMaxSitemapEntries)
	if err != nil {
		return nil
	}

	var all []models.SitemapEntry
	all = append(all, entries...)
	for _, n := range nested {
		all = append(all, fetchSitemapRecursive(n, sitemapURL, depth+1, fetch)...)
	}
	return all
}

func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}
