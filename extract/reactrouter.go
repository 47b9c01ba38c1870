package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
)

// reactRouterContextRe finds the window.__reactRouterContext = {...};
// assignment, which embeds the route loader data as JSON. Assignments to
// window.__reactRouterContext.streamController are not matched.
var reactRouterContextRe = regexp.MustCompile(`window\.__reactRouterContext\s*=\s*(\{.*?\});`)

var reactRouterBodyPaths = []string{
	"state.loaderData.root.article.body",
	"state.loaderData.routes-article.content",
}

// ReactRouterHydration finds the window.__reactRouterContext JSON island and
// walks it for an article body, structurally analogous to NextData (spec
// §4.E.7).
func ReactRouterHydration(doc *goquery.Document) *models.Extraction {
	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := reactRouterContextRe.FindStringSubmatch(s.Text()); m != nil {
			raw = m[1]
			return false
		}
		return true
	})
	if raw == "" {
		return nil
	}

	var root any
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil
	}

	var body any
	for _, path := range reactRouterBodyPaths {
		if b := navigateJSONPath(root, path); b != nil {
			body = b
			break
		}
	}
	if body == nil {
		return nil
	}

	text := flattenNuxtBody(body)
	text = strings.TrimSpace(text)
	if len(text) < models.MinContentLength {
		return nil
	}

	return &models.Extraction{
		ContentHTML: text,
		TextContent: text,
		MethodTag:   models.MethodReactRouterHydration,
	}
}
