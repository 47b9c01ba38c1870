// Package cleanup implements the post-extraction content cleanup pass
// (figcaption/caption removal, boilerplate stripping, paragraph dedup) and
// HTML-to-markdown conversion, grounded on the teacher's cleaner package.
package cleanup

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
)

// dedupMinChars is the floor, in trimmed+whitespace-collapsed characters,
// for a paragraph to participate in later-occurrence deduplication.
const dedupMinChars = 80

// boilerplateMaxChars bounds how long a <p>/<span> can be and still be
// checked against boilerplatePatterns.
const boilerplateMaxChars = 200

var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)subscribe (now|to continue|to read)`),
	regexp.MustCompile(`(?i)sign up for our newsletter`),
	regexp.MustCompile(`(?i)^advertisement$`),
	regexp.MustCompile(`(?i)become a (member|subscriber)`),
	regexp.MustCompile(`(?i)already a subscriber\?`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Result holds the cleaned output of Clean.
type Result struct {
	HTML string
	Text string
}

// Clean runs the ordered cleanup pass from spec §4.F: remove
// figcaption/[itemprop=caption], strip short boilerplate paragraphs/spans,
// then deduplicate paragraphs by collapsed text, keeping the later
// occurrence (preview blocks precede the article body on many templates).
func Clean(rawHTML string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Result{HTML: rawHTML, Text: rawHTML}
	}

	doc.Find("figcaption, [itemprop=caption]").Remove()

	doc.Find("p, span").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) == 0 || len(text) > boilerplateMaxChars {
			return
		}
		for _, pat := range boilerplatePatterns {
			if pat.MatchString(text) {
				s.Remove()
				return
			}
		}
	})

	dedupLaterOccurrence(doc)

	html, err := doc.Html()
	if err != nil {
		html = rawHTML
	}

	text := strings.TrimSpace(doc.Text())
	return Result{HTML: html, Text: text}
}

// dedupLaterOccurrence removes every paragraph whose collapsed text (≥
// dedupMinChars) also appears in a paragraph later in document order,
// keeping only the last occurrence.
func dedupLaterOccurrence(doc *goquery.Document) {
	paragraphs := doc.Find("p")
	lastIndexByText := make(map[string]int)

	paragraphs.Each(func(i int, s *goquery.Selection) {
		key := collapse(s.Text())
		if len(key) < dedupMinChars {
			return
		}
		lastIndexByText[key] = i
	})

	paragraphs.Each(func(i int, s *goquery.Selection) {
		key := collapse(s.Text())
		if len(key) < dedupMinChars {
			return
		}
		if lastIndexByText[key] != i {
			s.Remove()
		}
	})
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NewMarkdownConverter builds a reusable, goroutine-safe converter
// configured the way the teacher's cleaner/markdown.go newMarkdownConverter
// does: base (strip script/style/head noise), commonmark rendering, and the
// table plugin with minimal cell padding.
func NewMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(
				table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
			),
		),
	)
}

// ToMarkdown converts cleaned HTML to Markdown, resolving relative <a>/<img>
// URLs against domain.
func ToMarkdown(conv *converter.Converter, htmlContent, domain string) (string, error) {
	return conv.ConvertString(htmlContent, converter.WithDomain(domain))
}
