package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
)

// rscPushRe finds self.__next_f.push([1, "..."]) calls: the flight protocol
// tags type-1 rows as plain string chunks to be concatenated in order.
var rscPushRe = regexp.MustCompile(`self\.__next_f\.push\(\[1,\s*"((?:[^"\\]|\\.)*)"\]\)`)

// rscRowMarkerRe locates a segment's start: <hex>:T<hex>, immediately
// preceding a text run.
var rscRowMarkerRe = regexp.MustCompile(`[0-9a-f]+:T[0-9a-f]+,`)

// rscNextRowRe locates the boundary where the next row begins.
var rscNextRowRe = regexp.MustCompile(`\n[0-9a-f]+:[A-Z\["$]`)

// NextRSC harvests React Server Component flight stream chunks embedded in
// inline <script> tags, concatenates them, and extracts natural-language
// text segments following RSC row markers. Grounded on the selector-based
// script scanning the teacher's cleaner package uses elsewhere
// (goquery.Find over script tags), generalized to this spec's RSC row-marker
// grammar.
func NextRSC(doc *goquery.Document) *models.Extraction {
	var flight strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		raw := s.Text()
		if !strings.Contains(raw, "__next_f.push") {
			return
		}
		for _, m := range rscPushRe.FindAllStringSubmatch(raw, -1) {
			chunk := unescapeJSString(m[1])
			flight.WriteString(chunk)
		}
	})

	combined := flight.String()
	if combined == "" {
		return nil
	}

	segments := rscTextSegments(combined)
	if len(segments) == 0 {
		return nil
	}

	text := strings.TrimSpace(strings.Join(segments, "\n\n"))
	if len(text) < models.MinContentLength {
		return nil
	}

	return &models.Extraction{
		ContentHTML: text,
		TextContent: text,
		MethodTag:   models.MethodNextRSC,
	}
}

// rscTextSegments locates every row-marker-prefixed run and keeps the ones
// that look like natural language: at least 100 chars, a low density of `<`
// characters, and more than 10% whitespace.
func rscTextSegments(combined string) []string {
	var out []string
	seen := make(map[string]bool)

	locs := rscRowMarkerRe.FindAllStringIndex(combined, -1)
	for _, loc := range locs {
		start := loc[1]
		rest := combined[start:]

		end := len(rest)
		if nextLoc := rscNextRowRe.FindStringIndex(rest); nextLoc != nil {
			end = nextLoc[0]
		}
		segment := rest[:end]
		segment = strings.TrimSpace(unescapeJSString(segment))

		if len(segment) < 100 {
			continue
		}
		if !looksLikeNaturalLanguage(segment) {
			continue
		}
		if seen[segment] {
			continue
		}
		seen[segment] = true
		out = append(out, segment)
	}
	return out
}

func looksLikeNaturalLanguage(s string) bool {
	n := len(s)
	if n == 0 {
		return false
	}
	angleBrackets := strings.Count(s, "<")
	if float64(angleBrackets)/float64(n)*100 > 1 {
		return false
	}
	whitespace := 0
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			whitespace++
		}
	}
	return float64(whitespace)/float64(n) > 0.10
}

func unescapeJSString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case 't':
				b.WriteByte('\t')
				i++
				continue
			case '"':
				b.WriteByte('"')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
