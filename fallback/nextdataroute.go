package fallback

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/transport"
)

// nextBuildID reads __NEXT_DATA__.buildId, needed to construct the
// /_next/data/<buildId>/<path>.json route.
func nextBuildID(doc *goquery.Document) (string, bool) {
	raw := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if raw == "" {
		return "", false
	}
	var root map[string]any
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return "", false
	}
	buildID, ok := root["buildId"].(string)
	return buildID, ok && buildID != ""
}

// IsNextJS reports whether the page carries a __NEXT_DATA__ script tag.
func IsNextJS(doc *goquery.Document) bool {
	return doc.Find(`script#__NEXT_DATA__`).Length() > 0
}

// NextDataRoute implements spec §4.H's next-data-route branch: when the
// orchestrator's DOM result is short and the page is Next.js, fetch
// /_next/data/<buildId>/<path>.json and read the block array at
// pageProps.story.body.content, or else pageProps.content.body. Each block's
// "text" field is joined with blank lines; other block fields and nested
// components are ignored, and a body that is not an array yields no result.
func NextDataRoute(ctx context.Context, f Fetcher, rawURL string, doc *goquery.Document) *models.Extraction {
	buildID, ok := nextBuildID(doc)
	if !ok {
		return nil
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	path := strings.Trim(pageURL.Path, "/")

	routeURL := url.URL{
		Scheme: pageURL.Scheme,
		Host:   pageURL.Host,
		Path:   "/_next/data/" + buildID + "/" + path + ".json",
	}

	resp, ferr := f.Get(ctx, routeURL.String(), transport.Options{})
	if ferr != nil || !resp.OK {
		return nil
	}

	var root any
	if err := json.Unmarshal([]byte(resp.Body), &root); err != nil {
		return nil
	}

	body := navigateJSONPath(root, "pageProps.story.body.content")
	if body == nil {
		body = navigateJSONPath(root, "pageProps.content.body")
	}
	if body == nil {
		return nil
	}

	blocks, ok := body.([]any)
	if !ok {
		return nil
	}
	text := strings.TrimSpace(flattenRouteBlocks(blocks))
	if len(text) < models.MinContentLength {
		return nil
	}

	return &models.Extraction{
		ContentHTML: text,
		TextContent: text,
		MethodTag:   models.MethodNextDataRoute,
	}
}

func navigateJSONPath(root any, path string) any {
	cur := root
	for _, segment := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[segment]
		if !ok {
			return nil
		}
	}
	return cur
}

func flattenRouteBlocks(blocks []any) string {
	var b strings.Builder
	for _, raw := range blocks {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if text, ok := block["text"].(string); ok {
			b.WriteString(text)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
