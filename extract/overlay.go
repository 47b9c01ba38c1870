package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Overlay applies a caller-supplied remove/target selector pair to rawHTML
// before extraction runs (spec §4.E.8). Elements matching remove are deleted
// first; if target matches at least one element, body's children are
// replaced with clones of the matches in document order. target matching
// nothing is a non-fatal no-op — the unmodified (but remove-filtered)
// document is returned. Grounded on the teacher's cleaner/filter.go
// FilterContent, split into its own pre-extraction pass since this spec
// treats it as one step among several DOM strategies rather than the whole
// pipeline.
func Overlay(rawHTML string, remove, target []string) string {
	if len(remove) == 0 && len(target) == 0 {
		return rawHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, sel := range remove {
		doc.Find(sel).Remove()
	}

	if len(target) > 0 {
		combined := strings.Join(target, ", ")
		matches := doc.Find(combined)
		if matches.Length() > 0 {
			body := doc.Find("body")
			body.Children().Remove()
			matches.Each(func(_ int, s *goquery.Selection) {
				if h, err := goquery.OuterHtml(s); err == nil {
					body.AppendHtml(h)
				}
			})
		}
	}

	result, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return result
}
