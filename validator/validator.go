// Package validator applies the content gate described in spec §4.D:
// status/content-type/size/word-count/challenge checks against a fetched
// (html, status, content_type) triple, before any extraction runs.
//
// The word-count scanner is grounded on the teacher's
// scraper/httpfetch.go extractVisibleText — an explicit html.Tokenizer
// tag-scanner, not a regex, satisfying the "non-backtracking" requirement
// spec §9's design notes call out for script/style stripping.
package validator

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/brightwell-labs/fetchcore/models"
)

const minBodySize = 5 * 1024 // 5 KiB
const minWordCount = 100
const accessRestrictedMaxWordCount = 200

// ChallengeMarker is a (provider, body substring) pair used to detect
// anti-bot interstitials.
type ChallengeMarker struct {
	Provider string
	Needle   string
}

// DefaultChallengeMarkers covers the common interstitial providers.
var DefaultChallengeMarkers = []ChallengeMarker{
	{Provider: "cloudflare", Needle: "cf-turnstile"},
	{Provider: "cloudflare", Needle: "cf-challenge-running"},
	{Provider: "cloudflare", Needle: "Checking your browser before accessing"},
	{Provider: "datadome", Needle: "datadome"},
	{Provider: "perimeterx", Needle: "px-captcha"},
}

// SubscriptionGatePhrases are checked when 100 <= word_count < 200 (spec
// §4.D.6).
var SubscriptionGatePhrases = []string{
	"subscribe to continue reading",
	"this content is for subscribers only",
	"become a member to read",
	"you've reached your free article limit",
	"sign in to continue reading",
}

// Input is the triple the validator checks, per spec §4.D.
type Input struct {
	Body        string
	StatusCode  int
	ContentType []string // array-valued header; first non-empty value used
}

// Validate runs the full check sequence, returning the first failure, or nil
// on success.
func Validate(in Input, markers []ChallengeMarker) *models.FetchError {
	if in.StatusCode < 200 || in.StatusCode > 299 {
		return models.NewFetchError(models.ErrHTTPStatus, "status out of [200,299]")
	}

	ct := firstNonEmpty(in.ContentType)
	if ct != "" && !strings.HasPrefix(ct, "text/html") && !strings.HasPrefix(ct, "application/xhtml+xml") {
		return models.NewFetchError(models.ErrWrongContentType, "content-type "+ct)
	}

	if len(in.Body) < minBodySize {
		return models.NewFetchError(models.ErrBodyTooSmall, "body below 5 KiB")
	}

	if marker := matchChallenge(in.Body, markers); marker != nil {
		ferr := models.NewFetchError(models.ErrChallengeDetected, "matched challenge marker")
		ferr.ChallengeType = marker.Provider
		return ferr
	}

	wordCount := CountWords(StripToText(in.Body))
	if wordCount < minWordCount {
		return models.NewFetchError(models.ErrInsufficientContent, "word count below 100")
	}

	if wordCount < accessRestrictedMaxWordCount && matchesSubscriptionGate(in.Body) {
		return models.NewFetchError(models.ErrAccessRestricted, "subscription gate phrase matched")
	}

	return nil
}

func firstNonEmpty(vals []string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func matchChallenge(body string, markers []ChallengeMarker) *ChallengeMarker {
	lower := strings.ToLower(body)
	for i := range markers {
		if strings.Contains(lower, strings.ToLower(markers[i].Needle)) {
			return &markers[i]
		}
	}
	return nil
}

func matchesSubscriptionGate(body string) bool {
	lower := strings.ToLower(body)
	for _, phrase := range SubscriptionGatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// StripToText strips scripts, styles, HTML comments, and tags using an
// explicit tag-scanner (never a single complex regex, to avoid catastrophic
// backtracking on pathologically nested <script> sequences), and drops
// numeric HTML entities so they don't inflate the word count.
func StripToText(body string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(body))
	var buf strings.Builder
	skipDepth := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return buf.String()
		case html.CommentToken:
			continue
		case html.StartTagToken, html.SelfClosingTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" {
				if tt == html.StartTagToken {
					skipDepth++
				}
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			tag := string(tn)
			if tag == "script" || tag == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(stripNumericEntities(tokenizer.Text()))
				buf.WriteByte(' ')
			}
		}
	}
}

// stripNumericEntities removes &#N; and &#xH; sequences from already-decoded
// token text (the tokenizer decodes named entities but numeric character
// references can still appear literally in malformed markup); dropped so
// they never inflate the word count.
func stripNumericEntities(text []byte) []byte {
	s := string(text)
	if !strings.Contains(s, "&#") {
		return text
	}
	var out strings.Builder
	for i := 0; i < len(s); {
		if strings.HasPrefix(s[i:], "&#") {
			end := strings.IndexByte(s[i:], ';')
			if end != -1 && end < 12 {
				i += end + 1
				continue
			}
		}
		out.WriteByte(s[i])
		i++
	}
	return []byte(out.String())
}

// CountWords is CJK-aware: each CJK Unified Ideograph, Hiragana, Katakana,
// or Hangul Syllable counts as one word; non-CJK text is tokenised on
// Unicode whitespace.
func CountWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if isCJK(r) {
			count++
			inWord = false
			continue
		}
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

func isCJK(r rune) bool {
	switch {
	case unicode.Is(unicode.Han, r):
		return true
	case unicode.Is(unicode.Hiragana, r):
		return true
	case unicode.Is(unicode.Katakana, r):
		return true
	case unicode.Is(unicode.Hangul, r):
		return true
	}
	return false
}
