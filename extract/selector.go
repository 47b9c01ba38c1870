package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
)

// containerSelectors is the fixed, ordered list of candidate article
// containers tried by the selector strategy. Earlier entries are preferred:
// the first one whose match clears MinContentLength wins.
var containerSelectors = []string{
	"article",
	"main article",
	"[role=main] article",
	".article-body",
	".post-content",
	".entry-content",
	"#article-body",
	"main",
	"[role=main]",
}

// noiseSelectors are removed from a cloned container before measuring and
// returning its content.
const noiseSelectors = "script, style, nav, aside, footer, header, form, iframe, .ads, .advertisement, .social-share"

// Selector iterates containerSelectors in order, clones the first match,
// strips noiseSelectors from the clone, and accepts the first candidate
// whose text clears MinContentLength. Grounded on the teacher's
// cleaner/filter.go FilterContent (selector-match + outer-HTML collection),
// extended with a noise-removal pass the teacher's filter didn't need since
// it operated on the whole-page include/exclude list rather than one cloned
// container.
func Selector(doc *goquery.Document) *models.Extraction {
	for _, sel := range containerSelectors {
		match := doc.Find(sel).First()
		if match.Length() == 0 {
			continue
		}

		clone := match.Clone()
		clone.Find(noiseSelectors).Remove()

		text := strings.TrimSpace(clone.Text())
		if len(text) < models.MinContentLength {
			continue
		}

		contentHTML, err := goquery.OuterHtml(clone)
		if err != nil {
			continue
		}

		return &models.Extraction{
			ContentHTML: contentHTML,
			TextContent: text,
			MethodTag:   models.MethodSelector(sel),
		}
	}
	return nil
}
