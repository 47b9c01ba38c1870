package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/transport"
)

// Fetcher is the subset of transport.Transport the fallback strategies need,
// narrowed so tests can substitute a stub.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, opts transport.Options) (*models.HTTPResponse, *models.FetchError)
	Post(ctx context.Context, rawURL string, form map[string]string, opts transport.Options) (*models.HTTPResponse, *models.FetchError)
}

// articleIDMeta finds <meta name="article.id" content="..."> and reports
// whether it is present, along with its value.
func articleIDMeta(doc *goquery.Document) (string, bool) {
	id, exists := doc.Find(`meta[name="article.id"]`).First().Attr("content")
	return id, exists && id != ""
}

type mobileAPIResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// MobileAPI implements spec §4.H's mobile API branch: when a site is
// flagged as a mobile-API host and the page carries an article ID meta tag,
// fetch <host>/api/mobile/article/<id> and accept the response if its
// content clears MinContentLength.
func MobileAPI(ctx context.Context, f Fetcher, rawURL string, doc *goquery.Document, isMobileAPISite bool) *models.Extraction {
	if !isMobileAPISite {
		return nil
	}
	id, ok := articleIDMeta(doc)
	if !ok {
		return nil
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	apiURL := fmt.Sprintf("%s://%s/api/mobile/article/%s", base.Scheme, base.Host, url.PathEscape(id))

	resp, ferr := f.Get(ctx, apiURL, transport.Options{})
	if ferr != nil || !resp.OK {
		return nil
	}

	var payload mobileAPIResponse
	if err := json.Unmarshal([]byte(resp.Body), &payload); err != nil {
		return nil
	}

	text := strings.TrimSpace(payload.Content)
	if len(text) < models.MinContentLength {
		return nil
	}

	return &models.Extraction{
		Title:       payload.Title,
		Byline:      payload.Author,
		ContentHTML: payload.Content,
		TextContent: text,
		MethodTag:   models.MethodMobileAPI,
	}
}
