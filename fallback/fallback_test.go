package fallback

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/transport"
)

type stubFetcher struct {
	getResponses  map[string]*models.HTTPResponse
	postResponses map[string]*models.HTTPResponse
}

func (s *stubFetcher) Get(_ context.Context, rawURL string, _ transport.Options) (*models.HTTPResponse, *models.FetchError) {
	if resp, ok := s.getResponses[rawURL]; ok {
		return resp, nil
	}
	return nil, models.NewFetchError(models.ErrNetwork, "no stub for "+rawURL)
}

func (s *stubFetcher) Post(_ context.Context, rawURL string, _ map[string]string, _ transport.Options) (*models.HTTPResponse, *models.FetchError) {
	if resp, ok := s.postResponses[rawURL]; ok {
		return resp, nil
	}
	return nil, models.NewFetchError(models.ErrNetwork, "no stub for "+rawURL)
}

func TestSameSite_LastTwoLabelsMatch(t *testing.T) {
	if !sameSite("www.example.com", "api.example.com") {
		t.Error("expected subdomains of the same registrable domain to match")
	}
	if sameSite("example.com", "evil.com") {
		t.Error("expected different domains to be rejected")
	}
}

func TestSameSite_IPLiteralRequiresExactMatch(t *testing.T) {
	if sameSite("1.2.3.4", "5.6.7.8") {
		t.Error("expected different IP literals to be rejected")
	}
	if !sameSite("1.2.3.4", "1.2.3.4") {
		t.Error("expected identical IP literals to match")
	}
}

func TestMobileAPI_ReturnsExtractionWhenArticleIDPresent(t *testing.T) {
	html := `<html><head><meta name="article.id" content="42"></head><body></body></html>`
	doc := mustParse(t, html)

	f := &stubFetcher{getResponses: map[string]*models.HTTPResponse{
		"https://example.com/api/mobile/article/42": {
			OK: true, StatusCode: 200,
			Body: `{"title":"T","content":"` + strings.Repeat("word ", 30) + `","author":"A"}`,
		},
	}}

	ext := MobileAPI(context.Background(), f, "https://example.com/a", doc, true)
	if ext == nil {
		t.Fatal("expected a mobile API extraction")
	}
	if ext.MethodTag != models.MethodMobileAPI {
		t.Errorf("expected mobile-api method tag, got %s", ext.MethodTag)
	}
}

func TestWPAjax_DetectsAjaxURLActionAndID(t *testing.T) {
	html := `<script>var ajaxurl = "https://example.com/wp-admin/admin-ajax.php"; var data = {action: "get_article", article_id: "1234"};</script>`
	cand, ok := detectWPAjax(html)
	if !ok {
		t.Fatal("expected WP-AJAX candidate to be detected")
	}
	if cand.Action != "get_article" || cand.ArticleID != "1234" {
		t.Errorf("unexpected candidate: %+v", cand)
	}
}

func TestWPAjax_RejectsCrossOriginAjaxURL(t *testing.T) {
	html := `<script>var ajaxurl = "https://evil.com/admin-ajax.php"; var data = {action: "get_article", article_id: "1234"};</script>`
	f := &stubFetcher{postResponses: map[string]*models.HTTPResponse{}}
	ext := WPAjax(context.Background(), f, "https://example.com/a", html)
	if ext != nil {
		t.Error("expected cross-origin ajaxurl to be rejected before any request")
	}
}

func TestRecoverWPAjaxHTML_ParsesAllThreeShapes(t *testing.T) {
	if got := recoverWPAjaxHTML(`"<p>bare string</p>"`); got != "<p>bare string</p>" {
		t.Errorf("bare string shape: got %q", got)
	}
	if got := recoverWPAjaxHTML(`{"data": "<p>from data</p>"}`); got != "<p>from data</p>" {
		t.Errorf("data envelope shape: got %q", got)
	}
	if got := recoverWPAjaxHTML(`<p>raw html</p>`); got != "<p>raw html</p>" {
		t.Errorf("raw html shape: got %q", got)
	}
}

func TestWPREST_DirectAlternateLinkFetchesSinglePost(t *testing.T) {
	html := `<html><head>
		<link rel="alternate" type="application/json" href="https://example.com/wp-json/wp/v2/posts/42">
	</head><body></body></html>`
	doc := mustParse(t, html)

	body := `{"title":{"rendered":"A Title"},"content":{"rendered":"<p>` +
		strings.Repeat("word ", 30) + `</p>"},"excerpt":{"rendered":"<p>ex</p>"},"date":"2024-01-01T00:00:00"}`
	f := &stubFetcher{getResponses: map[string]*models.HTTPResponse{
		"https://example.com/wp-json/wp/v2/posts/42": {OK: true, StatusCode: 200, Body: body},
	}}

	ext := WPREST(context.Background(), f, "https://example.com/a", doc)
	if ext == nil {
		t.Fatal("expected an extraction from the direct alternate link")
	}
	if ext.MethodTag != models.MethodWPRestAPI {
		t.Errorf("expected wp-rest-api method tag, got %s", ext.MethodTag)
	}
	if ext.Title != "A Title" {
		t.Errorf("expected title to be recovered, got %q", ext.Title)
	}
}

func TestWPREST_FallsBackToDiscoveryLinkAndSlugQuery(t *testing.T) {
	html := `<html><head>
		<link rel="https://api.w.org/" href="https://example.com/wp-json">
	</head><body></body></html>`
	doc := mustParse(t, html)

	body := `[{"title":{"rendered":"Slug Title"},"content":{"rendered":"<p>` +
		strings.Repeat("word ", 30) + `</p>"},"excerpt":{"rendered":"<p>ex</p>"},"date":"2024-01-01T00:00:00"}]`
	f := &stubFetcher{getResponses: map[string]*models.HTTPResponse{
		"https://example.com/wp-json/wp/v2/posts?slug=my-post": {OK: true, StatusCode: 200, Body: body},
	}}

	ext := WPREST(context.Background(), f, "https://example.com/my-post", doc)
	if ext == nil {
		t.Fatal("expected an extraction from the discovery-link/slug-query path")
	}
	if ext.Title != "Slug Title" {
		t.Errorf("expected title to be recovered, got %q", ext.Title)
	}
}

func TestWPREST_RejectsCrossOriginAlternateLink(t *testing.T) {
	html := `<html><head>
		<link rel="alternate" type="application/json" href="https://evil.com/wp-json/wp/v2/posts/42">
	</head><body></body></html>`
	doc := mustParse(t, html)

	f := &stubFetcher{getResponses: map[string]*models.HTTPResponse{}}
	ext := WPREST(context.Background(), f, "https://example.com/a", doc)
	if ext != nil {
		t.Error("expected cross-origin alternate link to be rejected before any request")
	}
}

func TestPrism_ReturnsPlainTextContentFromANSElements(t *testing.T) {
	html := `<html><head><script id="__NEXT_DATA__">{"props":{"runtimeConfig":{
		"CLIENT_SIDE_API_DOMAIN":"https://example.com","CONTENT_SOURCE":"site-content"
	}}}</script></head><body></body></html>`
	doc := mustParse(t, html)

	ans := `{"headlines":{"basic":"Prism Title"},"content_elements":[
		{"type":"text","content":"` + strings.Repeat("word ", 30) + `"},
		{"type":"header","level":2,"content":"Section"}
	]}`
	// Prism builds its endpoint URL deterministically from the page URL and
	// the detected runtimeConfig; pre-register exactly that URL.
	endpoint := "https://example.com/api/site-content?_website=example.com&query=%7B%22canonical_url%22%3A%22%2Fa%22%7D"
	f := &stubFetcher{getResponses: map[string]*models.HTTPResponse{
		endpoint: {OK: true, StatusCode: 200, Body: ans},
	}}

	ext := Prism(context.Background(), f, "https://example.com/a", doc)
	if ext == nil {
		t.Fatal("expected a Prism extraction")
	}
	if ext.MethodTag != models.MethodPrismContentAPI {
		t.Errorf("expected prism-content-api method tag, got %s", ext.MethodTag)
	}
	if strings.Contains(ext.TextContent, "<") {
		t.Errorf("expected TextContent to be plain text, got %q", ext.TextContent)
	}
	if !strings.Contains(ext.ContentHTML, "<h2>") {
		t.Errorf("expected ContentHTML to retain structural tags, got %q", ext.ContentHTML)
	}
}

func TestChain_WPRESTWinsWhenDOMEmpty(t *testing.T) {
	rawHTML := `<html><head>
		<link rel="alternate" type="application/json" href="https://example.com/wp-json/wp/v2/posts/42">
	</head><body><article>too short</article></body></html>`

	body := `{"title":{"rendered":"WP Title"},"content":{"rendered":"<p>` +
		strings.Repeat("word ", 30) + `</p>"},"excerpt":{"rendered":"<p>ex</p>"},"date":"2024-01-01T00:00:00"}`
	f := &stubFetcher{getResponses: map[string]*models.HTTPResponse{
		"https://example.com/wp-json/wp/v2/posts/42": {OK: true, StatusCode: 200, Body: body},
	}}

	orchestrate := func(html, url string) *models.Extraction {
		return nil // the DOM orchestrator finds nothing useful in "too short"
	}

	ext, ferr := Chain(context.Background(), f, rawHTML, "https://example.com/a", nil, Site{}, orchestrate)
	if ferr != nil {
		t.Fatalf("expected a successful WP REST extraction, got error %+v", ferr)
	}
	if ext == nil || ext.MethodTag != models.MethodWPRestAPI {
		t.Fatalf("expected WP REST to win when DOM extraction is empty, got %+v", ext)
	}
	if ext.Title != "WP Title" {
		t.Errorf("expected title recovered from WP REST, got %q", ext.Title)
	}
}

func TestChain_CascadingFallbackScenario(t *testing.T) {
	rawHTML := `<html><body>
		<script>var ajaxurl = "https://example.com/wp-admin/admin-ajax.php"; var data = {action: "get_article", article_id: "1234"};</script>
		<article>too short</article>
	</body></html>`

	ajaxBody := `{"data": "<p>` + strings.Repeat("recovered content ", 40) + `</p>"}`
	f := &stubFetcher{
		getResponses:  map[string]*models.HTTPResponse{},
		postResponses: map[string]*models.HTTPResponse{
			"https://example.com/wp-admin/admin-ajax.php": {OK: true, StatusCode: 200, Body: ajaxBody},
		},
	}

	validErr := models.NewFetchError(models.ErrInsufficientContent, "page content below floor")
	ext, ferr := Chain(context.Background(), f, rawHTML, "https://example.com/a", validErr, Site{}, nil)
	if ferr != nil {
		t.Fatalf("expected the recovery chain to reach WP-AJAX, got error %+v", ferr)
	}
	if ext == nil || ext.MethodTag != models.MethodWPAjaxContent {
		t.Fatalf("expected WP-AJAX to be the only recovery strategy able to succeed, got %+v", ext)
	}
}

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}
