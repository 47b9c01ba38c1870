package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/cleanup"
	"github.com/brightwell-labs/fetchcore/models"
)

// finalizeSkipsCleanup names the methods whose output is already
// plain-structured text/markdown, for which running the HTML cleanup pass
// (designed around readability/selector markup) would do nothing useful.
var finalizeSkipsCleanup = map[models.MethodTag]bool{
	models.MethodNextData:             true,
	models.MethodNextDataHTML:         true,
	models.MethodNextRSC:              true,
	models.MethodJSONLD:               true,
	models.MethodNuxtPayload:          true,
	models.MethodReactRouterHydration: true,
	models.MethodWPAjaxContent:        true,
	models.MethodPrismContentAPI:      true,
}

// SiteConfig carries the per-host flags an orchestrator run may consult
// (component L). The boolean fields default to false and NextDataPath to
// empty.
type SiteConfig struct {
	PreferNextData bool
	PreferJSONLD   bool
	NextDataPath   string
}

// Orchestrate implements spec §4.G: overlay, parse, access-metadata read,
// config fast paths, strategy fan-out, comparators, priority tie-break,
// metadata composition, and finalize.
func Orchestrate(rawHTML, sourceURL string, site SiteConfig, remove, target []string) *models.Extraction {
	overlaid := Overlay(rawHTML, remove, target)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(overlaid))
	if err != nil {
		return nil
	}

	access := JSONLDAccessMetadata(doc)

	if site.PreferNextData {
		if nd := NextData(doc, site.NextDataPath); nd.MeetsGood() {
			return finalize(nd, doc, overlaid, sourceURL, access, nil)
		}
	}
	if site.PreferJSONLD {
		if jl := JSONLD(doc); jl.MeetsGood() {
			return finalize(jl, doc, overlaid, sourceURL, access, nil)
		}
	}

	candidates := runAllStrategies(overlaid, doc, sourceURL, site.NextDataPath)

	applyComparators(candidates)

	if winner := pickFromGoodTier(candidates); winner != nil {
		return finalize(winner, doc, overlaid, sourceURL, access, candidates)
	}
	if winner := pickByPriority(candidates); winner != nil {
		return finalize(winner, doc, overlaid, sourceURL, access, candidates)
	}
	if winner := firstNonEmpty(candidates); winner != nil {
		return finalize(winner, doc, overlaid, sourceURL, access, candidates)
	}
	return nil
}

type strategySet struct {
	readability  *models.Extraction
	nextRSC      *models.Extraction
	nuxtPayload  *models.Extraction
	reactRouter  *models.Extraction
	nextData     *models.Extraction
	jsonLD       *models.Extraction
	selector     *models.Extraction
	textDensity  *models.Extraction
}

func runAllStrategies(rawHTML string, doc *goquery.Document, sourceURL, nextDataPath string) *strategySet {
	return &strategySet{
		readability: Readability(rawHTML, sourceURL),
		nextRSC:     NextRSC(doc),
		nuxtPayload: NuxtPayload(doc),
		reactRouter: ReactRouterHydration(doc),
		nextData:    NextData(doc, nextDataPath),
		jsonLD:      JSONLD(doc),
		selector:    Selector(doc),
		textDensity: TextDensity(doc),
	}
}

// applyComparators suppresses Readability when a denser strategy clearly
// beats it in length (spec §4.G step 6).
func applyComparators(c *strategySet) {
	if c.textDensity.MeetsGood() && c.readability != nil &&
		len(c.textDensity.TextContent) > 2*len(c.readability.TextContent) {
		c.readability = nil
	}
	if c.nextRSC.MeetsGood() && c.readability != nil &&
		len(c.nextRSC.TextContent) > 2*len(c.readability.TextContent) {
		c.readability = nil
	}
}

// pickFromGoodTier returns the longest candidate meeting GoodContentLength,
// excluding selector:* candidates from this tier (spec §4.G step 7).
func pickFromGoodTier(c *strategySet) *models.Extraction {
	var best *models.Extraction
	consider := func(e *models.Extraction) {
		if e == nil || !e.MeetsGood() {
			return
		}
		if best == nil || len(e.TextContent) > len(best.TextContent) {
			best = e
		}
	}
	consider(c.readability)
	consider(c.nextRSC)
	consider(c.nuxtPayload)
	consider(c.reactRouter)
	consider(c.nextData)
	consider(c.jsonLD)
	consider(c.textDensity)
	return best
}

// pickByPriority walks the fixed priority order from spec §4.G step 8,
// returning the first candidate meeting MinContentLength.
func pickByPriority(c *strategySet) *models.Extraction {
	for _, e := range []*models.Extraction{
		c.readability, c.nextRSC, c.nuxtPayload, c.reactRouter,
		c.nextData, c.jsonLD, c.selector, c.textDensity,
	} {
		if e.MeetsFloor() {
			return e
		}
	}
	return nil
}

// fillFromCandidates fills any of winner's still-empty byline/published_time/
// site_name/language fields from whichever losing candidate has it, walking
// in the same fixed priority order as pickByPriority.
func fillFromCandidates(winner *models.Extraction, c *strategySet) {
	for _, e := range []*models.Extraction{
		c.readability, c.nextRSC, c.nuxtPayload, c.reactRouter,
		c.nextData, c.jsonLD, c.selector, c.textDensity,
	} {
		if e == nil || e == winner {
			continue
		}
		if winner.Byline == "" {
			winner.Byline = e.Byline
		}
		if winner.PublishedTime == "" {
			winner.PublishedTime = e.PublishedTime
		}
		if winner.SiteName == "" {
			winner.SiteName = e.SiteName
		}
		if winner.Language == "" {
			winner.Language = e.Language
		}
	}
}

func firstNonEmpty(c *strategySet) *models.Extraction {
	for _, e := range []*models.Extraction{
		c.readability, c.nextRSC, c.nuxtPayload, c.reactRouter,
		c.nextData, c.jsonLD, c.selector, c.textDensity,
	} {
		if e != nil && strings.TrimSpace(e.TextContent) != "" {
			return e
		}
	}
	return nil
}

// finalize composes metadata from donor candidates (spec.md:132: empty
// byline/published_time/site_name/language fields are filled first from the
// JSON-LD metadata-only pass, then from the other candidates), runs cleanup
// unless the winning method is in finalizeSkipsCleanup, converts to
// markdown, and extracts media (spec §4.G steps 10-11). candidates is nil
// when winner came from a site-config fast path, where no sibling
// candidates were ever computed.
func finalize(winner *models.Extraction, doc *goquery.Document, rawHTML, sourceURL string, access AccessMetadata, candidates *strategySet) *models.Extraction {
	byline, publishedTime, siteName, language := JSONLDMetadataOnly(doc)
	if winner.Byline == "" {
		winner.Byline = byline
	}
	if winner.PublishedTime == "" {
		winner.PublishedTime = publishedTime
	}
	if winner.SiteName == "" {
		winner.SiteName = siteName
	}
	if winner.Language == "" {
		winner.Language = language
	}

	if candidates != nil {
		fillFromCandidates(winner, candidates)
	}

	winner.IsAccessibleForFree = access.IsAccessibleForFree
	winner.DeclaredWordCount = access.DeclaredWordCount

	if !finalizeSkipsCleanup[winner.MethodTag] {
		cleaned := cleanup.Clean(winner.ContentHTML)
		winner.ContentHTML = cleaned.HTML
		winner.TextContent = cleaned.Text
	}

	conv := cleanup.NewMarkdownConverter()
	if md, err := cleanup.ToMarkdown(conv, winner.ContentHTML, sourceURL); err == nil {
		winner.Markdown = md
	} else {
		winner.Markdown = winner.TextContent
	}

	winner.Media = Media(winner.ContentHTML, sourceURL)

	return winner
}
