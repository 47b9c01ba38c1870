// Package models holds the data types shared across the fetch and crawl
// pipeline: extraction candidates, fetch/crawl results, and the session and
// frontier bookkeeping records.
package models

// MinContentLength is the floor, in characters of extracted text, for a DOM
// strategy to return a candidate at all.
const MinContentLength = 100

// GoodContentLength is the floor at which a candidate may short-circuit the
// orchestrator or win a length comparison outright.
const GoodContentLength = 500

// MethodTag identifies which strategy produced an Extraction. Stable across
// releases — callers may branch on it.
type MethodTag string

const (
	MethodReadability           MethodTag = "readability"
	MethodReadabilityRelaxed    MethodTag = "readability-relaxed"
	MethodNextRSC               MethodTag = "next-rsc"
	MethodNuxtPayload           MethodTag = "nuxt-payload"
	MethodReactRouterHydration  MethodTag = "react-router-hydration"
	MethodNextData              MethodTag = "next-data"
	MethodNextDataHTML          MethodTag = "next-data-html"
	MethodJSONLD                MethodTag = "json-ld"
	MethodTextDensity           MethodTag = "text-density"
	MethodWPRestAPI             MethodTag = "wp-rest-api"
	MethodWPAjaxContent         MethodTag = "wp-ajax-content"
	MethodPrismContentAPI       MethodTag = "prism-content-api"
	MethodMobileAPI             MethodTag = "mobile-api"
	MethodPDFParse              MethodTag = "pdf-parse"
	MethodNextDataRoute         MethodTag = "next-data-route"
)

// MethodSelector builds the "selector:<css>" method tag for the selector
// strategy, which carries the matched container selector in the tag itself.
func MethodSelector(which string) MethodTag {
	return MethodTag("selector:" + which)
}

// MediaKind discriminates the MediaElement union.
type MediaKind int

const (
	MediaImage MediaKind = iota
	MediaDocument
	MediaVideo
	MediaAudio
)

// MediaElement is a single piece of embedded media discovered in extracted
// content, de-duplicated by resolved absolute URL within one extraction.
type MediaElement struct {
	Kind MediaKind

	// Image
	Src string
	Alt string

	// Document
	Href      string
	Text      string
	Extension string

	// Video / Audio
	Provider string
}

// Extraction is the record produced by a single DOM strategy. text_content
// must be at least MinContentLength characters for a strategy to return one
// at all — see extract.Orchestrate.
type Extraction struct {
	Title                  string
	Byline                 string
	ContentHTML            string
	TextContent            string
	Excerpt                string
	SiteName               string
	PublishedTime          string
	Language               string
	MethodTag              MethodTag
	Markdown               string
	Media                  []MediaElement
	IsAccessibleForFree    *bool
	DeclaredWordCount      *int
}

// MeetsFloor reports whether the extraction clears MinContentLength.
func (e *Extraction) MeetsFloor() bool {
	return e != nil && len(e.TextContent) >= MinContentLength
}

// MeetsGood reports whether the extraction clears GoodContentLength.
func (e *Extraction) MeetsGood() bool {
	return e != nil && len(e.TextContent) >= GoodContentLength
}
