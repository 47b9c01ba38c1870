package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
)

// nuxtPayloadRe finds the window.__NUXT__={...} object-assignment form. The
// window.__NUXT__=(function(...){...}(...)) wrapper form is not matched.
var nuxtPayloadRe = regexp.MustCompile(`window\.__NUXT__\s*=\s*(\{.*\})\s*;?\s*</script>`)

// articleBodyPaths are the conventional locations a Nuxt content module
// stores the page's article body.
var articleBodyPaths = []string{
	"data.0.article.body",
	"data.0.page.body",
	"state.article.body",
}

// NuxtPayload finds the window.__NUXT__ JSON island and walks it for an
// article body, structurally analogous to NextData (spec §4.E.7) but
// against Nuxt's payload shape rather than Next's props.pageProps.
func NuxtPayload(doc *goquery.Document) *models.Extraction {
	var raw string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if m := nuxtPayloadRe.FindStringSubmatch(text + "</script>"); m != nil {
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
	for _, path := range articleBodyPaths {
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
		MethodTag:   models.MethodNuxtPayload,
	}
}

func flattenNuxtBody(body any) string {
	switch v := body.(type) {
	case string:
		return v
	case []any:
		return flattenBlocks(v)
	default:
		return ""
	}
}
