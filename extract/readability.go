// Package extract implements the DOM extraction strategies: Readability,
// JSON-LD, selector, text-density, and the framework-hydration extractors
// (Next.js data, Next.js RSC, Nuxt payload, React Router), plus the
// orchestrator that picks a winner among them.
package extract

import (
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/brightwell-labs/fetchcore/models"
)

// relaxedMinChars is the retry threshold used on the second readability pass
// when the first (library-default) pass returns under MinContentLength.
const relaxedMinChars = 100

// Readability runs the Mozilla Readability algorithm against rawHTML, first
// with the library's own default character threshold and, if that yields
// under MinContentLength, a second pass against a fresh parse with the
// parser's CharThreshold relaxed to relaxedMinChars. Grounded on the
// teacher's cleaner/readability.go ExtractContent, generalized to the
// two-pass retry spec.md §4.E.1 asks for (the teacher only ever ran a single
// pass against a fixed internal floor).
func Readability(rawHTML, sourceURL string) *models.Extraction {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		return nil
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err == nil && len(strings.TrimSpace(article.TextContent)) >= models.MinContentLength {
		return toExtraction(article, models.MethodReadability)
	}

	relaxedParser := readability.NewParser()
	relaxedParser.CharThreshold = relaxedMinChars
	relaxed, err := relaxedParser.Parse(strings.NewReader(rawHTML), parsedURL)
	if err == nil && len(strings.TrimSpace(relaxed.TextContent)) >= relaxedMinChars {
		return toExtraction(relaxed, models.MethodReadabilityRelaxed)
	}

	return nil
}

func toExtraction(article readability.Article, tag models.MethodTag) *models.Extraction {
	return &models.Extraction{
		Title:         article.Title,
		Byline:        article.Byline,
		ContentHTML:   article.Content,
		TextContent:   article.TextContent,
		Excerpt:       article.Excerpt,
		SiteName:      article.SiteName,
		PublishedTime: formatPublishedTime(article),
		Language:      article.Language,
		MethodTag:     tag,
	}
}

func formatPublishedTime(article readability.Article) string {
	if article.PublishedTime == nil {
		return ""
	}
	return article.PublishedTime.Format("2006-01-02T15:04:05Z07:00")
}
