package extract

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
)

// Signal weights for the density scorer, unchanged from the teacher's
// cleaner/pruning.go tuning.
const (
	wTextDensity   = 3.0
	wLinkDensity   = -2.0
	wTagWeight     = 1.5
	wClassIDWeight = 1.0
	wTextLength    = 0.5
)

var positiveClassIDPatterns = []string{
	"content", "article", "post", "entry", "body", "main", "text",
}

var negativeClassIDPatterns = []string{
	"sidebar", "ad", "widget", "nav", "menu", "comment", "footer",
	"header", "banner", "popup", "modal", "cookie", "social", "share",
	"related", "recommend", "promo",
}

// TextDensity applies a CETD-style scorer to every top-level block under
// <body>, retaining blocks that score above zero, and concatenates their
// HTML as the candidate. Grounded on the teacher's cleaner/pruning.go
// PruneContent/scoreElement, generalized from "full-page content filter"
// into one DOM strategy among several that the orchestrator compares.
func TextDensity(doc *goquery.Document) *models.Extraction {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}

	var retainedHTML []string
	var retainedText []string
	body.Children().Each(func(_ int, el *goquery.Selection) {
		if scoreElement(el) <= 0 {
			return
		}
		if h, err := goquery.OuterHtml(el); err == nil {
			retainedHTML = append(retainedHTML, h)
			retainedText = append(retainedText, strings.TrimSpace(el.Text()))
		}
	})

	if len(retainedHTML) == 0 {
		return nil
	}

	text := strings.TrimSpace(strings.Join(retainedText, "\n"))
	if len(text) < models.MinContentLength {
		return nil
	}

	return &models.Extraction{
		ContentHTML: strings.Join(retainedHTML, "\n"),
		TextContent: text,
		MethodTag:   models.MethodTextDensity,
	}
}

func scoreElement(el *goquery.Selection) float64 {
	fullHTML, err := goquery.OuterHtml(el)
	if err != nil {
		return 0
	}

	text := strings.TrimSpace(el.Text())
	textLen := len(text)
	totalLen := len(fullHTML)

	textDensity := 0.0
	if totalLen > 0 {
		textDensity = float64(textLen) / float64(totalLen)
	}

	linkTextLen := 0
	el.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkTextLen += len(strings.TrimSpace(a.Text()))
	})
	linkDensity := 0.0
	if textLen > 0 {
		linkDensity = float64(linkTextLen) / float64(textLen)
	}

	tagW := tagWeight(el)
	classIDW := classIDWeight(el)
	textLenScore := math.Log10(float64(textLen) + 1)

	return textDensity*wTextDensity +
		linkDensity*wLinkDensity +
		tagW*wTagWeight +
		classIDW*wClassIDWeight +
		textLenScore*wTextLength
}

func tagWeight(el *goquery.Selection) float64 {
	switch goquery.NodeName(el) {
	case "article", "main", "section":
		return 5.0
	case "nav", "footer", "aside", "header":
		return -5.0
	default:
		return 0.0
	}
}

func classIDWeight(el *goquery.Selection) float64 {
	class, _ := el.Attr("class")
	id, _ := el.Attr("id")
	combined := strings.ToLower(class + " " + id)

	score := 0.0
	for _, pat := range positiveClassIDPatterns {
		if strings.Contains(combined, pat) {
			score += 3.0
			break
		}
	}
	for _, pat := range negativeClassIDPatterns {
		if strings.Contains(combined, pat) {
			score -= 3.0
			break
		}
	}
	return score
}
