package fallback

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/transport"
	"github.com/brightwell-labs/fetchcore/validator"
)

var ajaxURLRe = regexp.MustCompile(`ajaxurl\s*=\s*["']([^"']+)["']`)
var ajaxActionRe = regexp.MustCompile(`action\s*:\s*["']([^"']+)["']`)
var ajaxArticleIDRe = regexp.MustCompile(`(?i)(?:article[_-]?id|post[_-]?id)\s*[:=]\s*["']?([0-9a-fA-F-]{1,36})["']?`)

// wpAjaxCandidate is the parsed detection result.
type wpAjaxCandidate struct {
	AjaxURL   string
	Action    string
	ArticleID string
}

// detectWPAjax searches the raw page HTML for ajaxurl, the first
// action: string in document order, and an article-ID assignment (UUID or
// numeric). Per the Open Question decision recorded in SPEC_FULL.md, when
// multiple action: strings exist, the first in document order wins — there
// is no ranking by proximity to ajaxurl or the ID assignment.
func detectWPAjax(html string) (wpAjaxCandidate, bool) {
	urlMatch := ajaxURLRe.FindStringSubmatch(html)
	actionMatch := ajaxActionRe.FindStringSubmatch(html)
	idMatch := ajaxArticleIDRe.FindStringSubmatch(html)
	if urlMatch == nil || actionMatch == nil || idMatch == nil {
		return wpAjaxCandidate{}, false
	}
	return wpAjaxCandidate{AjaxURL: urlMatch[1], Action: actionMatch[1], ArticleID: idMatch[1]}, true
}

type wpAjaxEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Content json.RawMessage `json:"content"`
	HTML    json.RawMessage `json:"html"`
}

// WPAjax implements spec §4.H's WP AJAX branch: detect the ajaxurl/action/
// article-ID triple, verify ajaxurl is same-origin with the page, POST the
// form-encoded action, and accept the recovered HTML only once it clears
// GoodContentLength.
func WPAjax(ctx context.Context, f Fetcher, rawURL, rawHTML string) *models.Extraction {
	cand, ok := detectWPAjax(rawHTML)
	if !ok {
		return nil
	}

	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	ajaxURL, err := pageURL.Parse(cand.AjaxURL)
	if err != nil || !sameOrigin(pageURL, ajaxURL) {
		return nil
	}

	resp, ferr := f.Post(ctx, ajaxURL.String(), map[string]string{
		"action":    cand.Action,
		"data[id]":  cand.ArticleID,
	}, transport.Options{})
	if ferr != nil || !resp.OK {
		return nil
	}

	html := recoverWPAjaxHTML(resp.Body)
	text := strings.TrimSpace(validator.StripToText(html))
	if len(text) < models.GoodContentLength {
		return nil
	}

	return &models.Extraction{
		ContentHTML: html,
		TextContent: text,
		MethodTag:   models.MethodWPAjaxContent,
	}
}

// recoverWPAjaxHTML parses the AJAX response body as (a) raw HTML, (b) a
// JSON object carrying HTML under data/content/html, or (c) a bare JSON
// string, per spec §4.H.
func recoverWPAjaxHTML(body string) string {
	trimmed := strings.TrimSpace(body)

	var bareString string
	if err := json.Unmarshal([]byte(trimmed), &bareString); err == nil {
		return bareString
	}

	var envelope wpAjaxEnvelope
	if err := json.Unmarshal([]byte(trimmed), &envelope); err == nil {
		for _, raw := range []json.RawMessage{envelope.Data, envelope.Content, envelope.HTML} {
			if len(raw) == 0 {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
		}
	}

	return body
}
