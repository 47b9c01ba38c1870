package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestSelector_PicksFirstMatchingContainerAndStripsNoise(t *testing.T) {
	html := `<html><body><nav>menu</nav><article><script>var x=1</script><p>` +
		strings.Repeat("word ", 30) + `</p></article></body></html>`
	doc := mustDoc(t, html)
	ext := Selector(doc)
	if ext == nil {
		t.Fatal("expected a selector extraction")
	}
	if strings.Contains(ext.ContentHTML, "<script>") {
		t.Error("expected noise selectors stripped from the clone")
	}
	if ext.MethodTag != "selector:article" {
		t.Errorf("expected method tag selector:article, got %s", ext.MethodTag)
	}
}

func TestSelector_ReturnsNilWhenNoContainerMeetsFloor(t *testing.T) {
	doc := mustDoc(t, `<html><body><article>short</article></body></html>`)
	if Selector(doc) != nil {
		t.Error("expected nil when no container clears MinContentLength")
	}
}

func TestJSONLD_AcceptsArticleTypeAndRejectsOthers(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
		{"@type": "Article", "articleBody": "` + strings.Repeat("word ", 30) + `", "headline": "T"}
	</script></head><body></body></html>`
	doc := mustDoc(t, html)
	ext := JSONLD(doc)
	if ext == nil {
		t.Fatal("expected a JSON-LD extraction")
	}
	if ext.Title != "T" {
		t.Errorf("expected title T, got %s", ext.Title)
	}
}

func TestJSONLD_FlattensGraph(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
		{"@graph": [{"@type": "Person", "name": "nobody"}, {"@type": "NewsArticle", "articleBody": "` +
		strings.Repeat("word ", 30) + `"}]}
	</script></head><body></body></html>`
	doc := mustDoc(t, html)
	if JSONLD(doc) == nil {
		t.Error("expected the NewsArticle node inside @graph to be found")
	}
}

func TestJSONLDAccessMetadata_ReadsAccessAndWordCount(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
		{"@type": "Article", "isAccessibleForFree": false, "wordCount": 842}
	</script></head><body></body></html>`
	doc := mustDoc(t, html)
	meta := JSONLDAccessMetadata(doc)
	if meta.IsAccessibleForFree == nil || *meta.IsAccessibleForFree != false {
		t.Error("expected isAccessibleForFree=false")
	}
	if meta.DeclaredWordCount == nil || *meta.DeclaredWordCount != 842 {
		t.Error("expected wordCount=842")
	}
}

func TestTextDensity_RejectsNavAndFooterBlocks(t *testing.T) {
	html := `<html><body>
		<nav class="nav">` + strings.Repeat("link ", 40) + `</nav>
		<article class="article-content">` + strings.Repeat("substantive article text ", 40) + `</article>
	</body></html>`
	doc := mustDoc(t, html)
	ext := TextDensity(doc)
	if ext == nil {
		t.Fatal("expected a text-density extraction")
	}
	if strings.Contains(ext.ContentHTML, "<nav") {
		t.Error("expected the low-scoring nav block to be excluded")
	}
}

func TestNextData_DefaultStoryBodyWalker(t *testing.T) {
	html := `<html><head><script id="__NEXT_DATA__">{
		"props": {"pageProps": {"story": {"body": {"content": [
			{"type": "PARAGRAPH", "text": "` + strings.Repeat("word ", 30) + `"},
			{"type": "ad", "text": "should be skipped"}
		]}}}}
	}</script></head><body></body></html>`
	doc := mustDoc(t, html)
	ext := NextData(doc, "")
	if ext == nil {
		t.Fatal("expected a next-data extraction")
	}
	if strings.Contains(ext.TextContent, "should be skipped") {
		t.Error("expected ad block type to be skipped")
	}
}

func TestNextRSC_HarvestsNaturalLanguageSegments(t *testing.T) {
	text := strings.Repeat("this is a natural language sentence with plenty of spaces ", 3)
	html := `<html><body><script>self.__next_f.push([1, "0:T1a,` + text + `\n1:[\"x\"]"])</script></body></html>`
	doc := mustDoc(t, html)
	ext := NextRSC(doc)
	if ext == nil {
		t.Fatal("expected an RSC extraction")
	}
}

func TestOverlay_RemoveThenTarget(t *testing.T) {
	html := `<html><body><div class="ad">junk</div><article>keep me</article><aside>side</aside></body></html>`
	out := Overlay(html, []string{".ad"}, []string{"article"})
	if strings.Contains(out, "junk") {
		t.Error("expected removed element to be gone")
	}
	if strings.Contains(out, "side") {
		t.Error("expected only target matches to remain in body")
	}
	if !strings.Contains(out, "keep me") {
		t.Error("expected target content to survive")
	}
}

func TestOverlay_EmptyTargetIsNonFatal(t *testing.T) {
	html := `<html><body><p>content</p></body></html>`
	out := Overlay(html, nil, []string{".nonexistent"})
	if !strings.Contains(out, "content") {
		t.Error("expected unmodified document when target matches nothing")
	}
}

func TestMedia_ResolvesRelativeImageURLsAndDedups(t *testing.T) {
	html := `<img src="/a.png" alt="x"><img src="/a.png"><img src="data:image/png;base64,xx">`
	media := Media(html, "https://example.com/article")
	if len(media) != 1 {
		t.Fatalf("expected exactly one deduplicated image, got %d", len(media))
	}
	if media[0].Src != "https://example.com/a.png" {
		t.Errorf("expected resolved absolute URL, got %s", media[0].Src)
	}
}

func TestOrchestrate_BasicDOMExtraction(t *testing.T) {
	html := `<html><head>
		<title>Basic Page</title>
		<script type="application/ld+json">{"@type":"Article","author":"Jane Doe","datePublished":"2024-03-01","publisher":{"@type":"Organization","name":"Example News"},"inLanguage":"en"}</script>
	</head><body>
		<nav>` + strings.Repeat("link ", 20) + `</nav>
		<article>` + strings.Repeat("This is substantive article text. ", 40) + `</article>
	</body></html>`

	ext := Orchestrate(html, "https://example.com/a", SiteConfig{}, nil, nil)
	if ext == nil {
		t.Fatal("expected an extraction for a plain article page")
	}
	if !ext.MeetsFloor() {
		t.Errorf("expected extraction to clear MinContentLength, got %d chars", len(ext.TextContent))
	}
	if ext.Byline != "Jane Doe" {
		t.Errorf("expected byline composed from JSON-LD metadata, got %q", ext.Byline)
	}
	if ext.SiteName != "Example News" {
		t.Errorf("expected site name composed from JSON-LD metadata, got %q", ext.SiteName)
	}
	if ext.Language != "en" {
		t.Errorf("expected language composed from JSON-LD metadata, got %q", ext.Language)
	}
}

func TestMedia_DetectsDocumentExtension(t *testing.T) {
	html := `<a href="/report.pdf">Report</a>`
	media := Media(html, "https://example.com/")
	if len(media) != 1 || media[0].Extension != ".pdf" {
		t.Fatalf("expected one pdf document, got %v", media)
	}
}
