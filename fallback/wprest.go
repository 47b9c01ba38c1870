package fallback

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/transport"
	"github.com/brightwell-labs/fetchcore/validator"
)

type wpRestPost struct {
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
	Excerpt struct {
		Rendered string `json:"rendered"`
	} `json:"excerpt"`
	Date string `json:"date"`
}

// wpRestLink finds <link rel="https://api.w.org/" href="..."> and reports
// whether it is present and same-origin with pageURL.
func wpRestLink(doc *goquery.Document, pageURL *url.URL) (string, bool) {
	href, exists := doc.Find(`link[rel="https://api.w.org/"]`).First().Attr("href")
	if !exists || href == "" {
		return "", false
	}
	resolved, err := pageURL.Parse(href)
	if err != nil {
		return "", false
	}
	if !sameOrigin(pageURL, resolved) {
		return "", false
	}
	return resolved.String(), true
}

// wpRestAlternateLink finds <link rel="alternate" type="application/json"
// href="..."> — a per-post REST endpoint already resolved by the page,
// requiring no api.w.org discovery or slug query — and reports whether it is
// present and same-origin with pageURL.
func wpRestAlternateLink(doc *goquery.Document, pageURL *url.URL) (string, bool) {
	href, exists := doc.Find(`link[rel="alternate"][type="application/json"]`).First().Attr("href")
	if !exists || href == "" {
		return "", false
	}
	resolved, err := pageURL.Parse(href)
	if err != nil {
		return "", false
	}
	if !sameOrigin(pageURL, resolved) {
		return "", false
	}
	return resolved.String(), true
}

// WPREST implements spec §4.H's WP REST branch. It prefers an already-
// resolved per-post REST link (<link rel=alternate type=application/json>)
// when present, falling back to api.w.org discovery plus a slug query.
// Whether WP REST's output wins over an already-computed DOM extraction
// (the ">2x and DOM>=GOOD" comparison) is the caller's responsibility — this
// function only performs the fetch.
func WPREST(ctx context.Context, f Fetcher, rawURL string, doc *goquery.Document) *models.Extraction {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}

	if direct, ok := wpRestAlternateLink(doc, pageURL); ok {
		resp, ferr := f.Get(ctx, direct, transport.Options{})
		if ferr != nil || !resp.OK {
			return nil
		}
		var post wpRestPost
		if err := json.Unmarshal([]byte(resp.Body), &post); err != nil {
			return nil
		}
		return wpRestExtraction(post)
	}

	base, ok := wpRestLink(doc, pageURL)
	if !ok {
		return nil
	}

	slug := lastPathSegment(pageURL.Path)
	if slug == "" {
		return nil
	}
	query := strings.TrimRight(base, "/") + "/wp/v2/posts?slug=" + url.QueryEscape(slug)

	resp, ferr := f.Get(ctx, query, transport.Options{})
	if ferr != nil || !resp.OK {
		return nil
	}

	var posts []wpRestPost
	if err := json.Unmarshal([]byte(resp.Body), &posts); err != nil || len(posts) == 0 {
		return nil
	}
	return wpRestExtraction(posts[0])
}

func wpRestExtraction(post wpRestPost) *models.Extraction {
	text := strings.TrimSpace(validator.StripToText(post.Content.Rendered))
	if len(text) < models.MinContentLength {
		return nil
	}
	return &models.Extraction{
		Title:         validator.StripToText(post.Title.Rendered),
		ContentHTML:   post.Content.Rendered,
		TextContent:   text,
		Excerpt:       validator.StripToText(post.Excerpt.Rendered),
		PublishedTime: post.Date,
		MethodTag:     models.MethodWPRestAPI,
	}
}

func lastPathSegment(p string) string {
	p = strings.TrimRight(p, "/")
	idx := strings.LastIndexByte(p, '/')
	if idx == -1 {
		return p
	}
	return p[idx+1:]
}
