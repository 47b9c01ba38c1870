package fallback

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
)

// OrchestrateFunc runs the DOM extraction orchestrator (component G),
// injected to avoid a package cycle (extract imports nothing from fallback,
// and fallback must not import extract back).
type OrchestrateFunc func(html, url string) *models.Extraction

// Site carries the per-host flags the chain consults (component L).
type Site struct {
	IsMobileAPISite bool
	PreferNextData  bool
}

// nextDataRouteThreshold is the DOM-result length below which the chain
// tries the /_next/data route as a supplement (spec §4.H).
const nextDataRouteThreshold = 2000

// Chain implements spec §4.H's fetch-level fallback entry point. validErr is
// the validator's verdict (nil means the validator judged the page valid).
func Chain(ctx context.Context, f Fetcher, rawHTML, rawURL string, validErr *models.FetchError, site Site, orchestrate OrchestrateFunc) (*models.Extraction, *models.FetchError) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewFetchError(models.ErrExtractionFailed, err.Error())
	}

	if validErr == nil {
		return validPageChain(ctx, f, rawHTML, rawURL, doc, site, orchestrate)
	}
	if validErr.Kind == models.ErrInsufficientContent {
		if ext := recoveryChain(ctx, f, rawHTML, rawURL, doc, site); ext != nil {
			return ext, nil
		}
	}
	return nil, validErr
}

func validPageChain(ctx context.Context, f Fetcher, rawHTML, rawURL string, doc *goquery.Document, site Site, orchestrate OrchestrateFunc) (*models.Extraction, *models.FetchError) {
	if site.IsMobileAPISite {
		if ext := MobileAPI(ctx, f, rawURL, doc, true); ext.MeetsFloor() {
			return ext, nil
		}
	}

	if wp := WPREST(ctx, f, rawURL, doc); wp.MeetsFloor() {
		dom := orchestrate(rawHTML, rawURL)
		if dom.MeetsGood() && len(dom.TextContent) > 2*len(wp.TextContent) {
			dom.Byline = firstNonEmptyStr(dom.Byline, wp.Byline)
			dom.PublishedTime = firstNonEmptyStr(dom.PublishedTime, wp.PublishedTime)
			return dom, nil
		}
		return wp, nil
	}

	if prism := Prism(ctx, f, rawURL, doc); prism.MeetsFloor() {
		return prism, nil
	}

	dom := orchestrate(rawHTML, rawURL)
	if dom.MeetsFloor() && len(dom.TextContent) < nextDataRouteThreshold && IsNextJS(doc) {
		if routed := NextDataRoute(ctx, f, rawURL, doc); routed.MeetsFloor() &&
			len(routed.TextContent) > len(dom.TextContent) {
			return routed, nil
		}
	}

	if dom == nil {
		return nil, models.NewFetchError(models.ErrExtractionFailed, "no strategy produced content")
	}
	return dom, nil
}

// recoveryChain tries the cheap recovery strategies in order, stopping at
// the first success, when DOM extraction judged the page insufficient.
func recoveryChain(ctx context.Context, f Fetcher, rawHTML, rawURL string, doc *goquery.Document, site Site) *models.Extraction {
	if ext := MobileAPI(ctx, f, rawURL, doc, site.IsMobileAPISite); ext.MeetsFloor() {
		return ext
	}
	if site.PreferNextData {
		if ext := NextDataRoute(ctx, f, rawURL, doc); ext.MeetsFloor() {
			return ext
		}
	}
	if ext := WPREST(ctx, f, rawURL, doc); ext.MeetsFloor() {
		return ext
	}
	if ext := Prism(ctx, f, rawURL, doc); ext.MeetsFloor() {
		return ext
	}
	if ext := WPAjax(ctx, f, rawURL, rawHTML); ext.MeetsFloor() {
		return ext
	}
	return nil
}

func firstNonEmptyStr(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
