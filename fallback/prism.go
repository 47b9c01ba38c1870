package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/transport"
	"github.com/brightwell-labs/fetchcore/validator"
)

type ansContentElement struct {
	Type    string              `json:"type"`
	Content string              `json:"content"`
	RawHTML string              `json:"raw_html"`
	Level   int                 `json:"level"`
	ListType string             `json:"list_type"`
	Items   []ansContentElement `json:"items"`
}

type ansResponse struct {
	ContentElements []ansContentElement `json:"content_elements"`
	Headlines       struct {
		Basic string `json:"basic"`
	} `json:"headlines"`
}

// prismConfig is the subset of __NEXT_DATA__.runtimeConfig Prism detection
// needs.
type prismConfig struct {
	APIDomain     string
	ContentSource string
}

// detectPrism reads runtimeConfig.CLIENT_SIDE_API_DOMAIN and
// runtimeConfig.CONTENT_SOURCE out of __NEXT_DATA__, if present.
func detectPrism(doc *goquery.Document) (prismConfig, bool) {
	raw := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if raw == "" {
		return prismConfig{}, false
	}
	var root map[string]any
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return prismConfig{}, false
	}
	props, _ := root["props"].(map[string]any)
	if props == nil {
		return prismConfig{}, false
	}
	runtime, _ := props["runtimeConfig"].(map[string]any)
	if runtime == nil {
		return prismConfig{}, false
	}
	apiDomain, _ := runtime["CLIENT_SIDE_API_DOMAIN"].(string)
	contentSource, _ := runtime["CONTENT_SOURCE"].(string)
	if apiDomain == "" || contentSource == "" {
		return prismConfig{}, false
	}
	return prismConfig{APIDomain: apiDomain, ContentSource: contentSource}, true
}

// Prism implements spec §4.H's Prism branch. It verifies the API host is
// same-site with the page before ever issuing the request, preventing the
// page from redirecting the fetch at an attacker-controlled host.
func Prism(ctx context.Context, f Fetcher, rawURL string, doc *goquery.Document) *models.Extraction {
	cfg, ok := detectPrism(doc)
	if !ok {
		return nil
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	apiURL, err := url.Parse(cfg.APIDomain)
	if err != nil {
		return nil
	}
	if !sameSite(pageURL.Host, apiURL.Host) {
		return nil
	}

	site := pageURL.Hostname()
	queryJSON, _ := json.Marshal(map[string]string{"canonical_url": pageURL.Path})
	endpoint := fmt.Sprintf("%s/api/%s?_website=%s&query=%s",
		strings.TrimRight(cfg.APIDomain, "/"), url.PathEscape(cfg.ContentSource),
		url.QueryEscape(site), url.QueryEscape(string(queryJSON)))

	resp, ferr := f.Get(ctx, endpoint, transport.Options{})
	if ferr != nil || !resp.OK {
		return nil
	}

	var ans ansResponse
	if err := json.Unmarshal([]byte(resp.Body), &ans); err != nil {
		return nil
	}

	html := flattenANS(ans.ContentElements)
	sanitized := bluemonday.UGCPolicy().AllowElements("h1", "h2", "h3", "h4", "h5", "h6").Sanitize(html)
	text := strings.TrimSpace(validator.StripToText(sanitized))
	if len(text) < models.MinContentLength {
		return nil
	}

	return &models.Extraction{
		Title:       ans.Headlines.Basic,
		ContentHTML: sanitized,
		TextContent: text,
		MethodTag:   models.MethodPrismContentAPI,
	}
}

// flattenANS renders Arc/Prism content_elements to HTML per spec §4.H:
// text, raw_html (concatenated as-is), header (clamped h1-h6), and list
// (ul/ol with items).
func flattenANS(elements []ansContentElement) string {
	var b strings.Builder
	for _, el := range elements {
		switch el.Type {
		case "text":
			b.WriteString("<p>")
			b.WriteString(el.Content)
			b.WriteString("</p>")
		case "raw_html":
			b.WriteString(el.RawHTML)
		case "header":
			level := el.Level
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			fmt.Fprintf(&b, "<h%d>%s</h%d>", level, el.Content, level)
		case "list":
			tag := "ul"
			if el.ListType == "ordered" {
				tag = "ol"
			}
			fmt.Fprintf(&b, "<%s>", tag)
			for _, item := range el.Items {
				fmt.Fprintf(&b, "<li>%s</li>", item.Content)
			}
			fmt.Fprintf(&b, "</%s>", tag)
		}
	}
	return b.String()
}
