package extract

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/brightwell-labs/fetchcore/models"
)

var errNotInt = errors.New("extract: not an integer")

// acceptedJSONLDTypes are the schema.org @type values treated as articles.
var acceptedJSONLDTypes = map[string]bool{
	"Article":                 true,
	"NewsArticle":             true,
	"BlogPosting":             true,
	"WebPage":                 true,
	"ReportageNewsArticle":    true,
}

// jsonLDNode is deliberately loose: schema.org payloads vary in shape, and a
// strict struct would reject valid real-world documents.
type jsonLDNode map[string]any

// AccessMetadata carries the publisher-declared access/word-count signals
// read from JSON-LD, independent of whether any JSON-LD item met the content
// threshold (spec §4.G step 3).
type AccessMetadata struct {
	IsAccessibleForFree *bool
	DeclaredWordCount   *int
}

// JSONLD flattens every application/ld+json payload on the page (including
// @graph arrays) and returns the first node whose @type is in
// acceptedJSONLDTypes and whose content clears MinContentLength.
func JSONLD(doc *goquery.Document) *models.Extraction {
	for _, node := range jsonLDNodes(doc) {
		if !isAcceptedType(node) {
			continue
		}
		text := firstNonEmptyString(node, "articleBody", "text", "description")
		if len(strings.TrimSpace(text)) < models.MinContentLength {
			continue
		}
		return &models.Extraction{
			Title:         stringField(node, "headline"),
			Byline:        authorName(node),
			TextContent:   text,
			ContentHTML:   text,
			Excerpt:       stringField(node, "description"),
			SiteName:      publisherName(node),
			PublishedTime: normalizePublishedTime(stringField(node, "datePublished")),
			Language:      stringField(node, "inLanguage"),
			MethodTag:     models.MethodJSONLD,
		}
	}
	return nil
}

// JSONLDMetadataOnly returns byline/published_time/site_name/language from
// the first accepted JSON-LD node regardless of content length, for use as
// a metadata donor when another strategy wins (spec §4.G step 10).
func JSONLDMetadataOnly(doc *goquery.Document) (byline, publishedTime, siteName, language string) {
	for _, node := range jsonLDNodes(doc) {
		if !isAcceptedType(node) {
			continue
		}
		return authorName(node), normalizePublishedTime(stringField(node, "datePublished")),
			publisherName(node), stringField(node, "inLanguage")
	}
	return "", "", "", ""
}

// JSONLDAccessMetadata reads isAccessibleForFree/wordCount from the first
// accepted JSON-LD node, independent of content length (spec §4.G step 3).
func JSONLDAccessMetadata(doc *goquery.Document) AccessMetadata {
	for _, node := range jsonLDNodes(doc) {
		if !isAcceptedType(node) {
			continue
		}
		var meta AccessMetadata
		if v, ok := node["isAccessibleForFree"]; ok {
			if b, ok := asBool(v); ok {
				meta.IsAccessibleForFree = &b
			}
		}
		if v, ok := node["wordCount"]; ok {
			if n, ok := asInt(v); ok {
				meta.DeclaredWordCount = &n
			}
		}
		return meta
	}
	return AccessMetadata{}
}

func jsonLDNodes(doc *goquery.Document) []jsonLDNode {
	var nodes []jsonLDNode
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := s.Text()
		var generic any
		if err := json.Unmarshal([]byte(raw), &generic); err != nil {
			return
		}
		nodes = append(nodes, flattenJSONLD(generic)...)
	})
	return nodes
}

// flattenJSONLD normalizes a decoded JSON-LD payload (object, array of
// objects, or an object carrying @graph) into a flat list of nodes.
func flattenJSONLD(v any) []jsonLDNode {
	switch t := v.(type) {
	case map[string]any:
		var out []jsonLDNode
		if graph, ok := t["@graph"]; ok {
			out = append(out, flattenJSONLD(graph)...)
		}
		out = append(out, jsonLDNode(t))
		return out
	case []any:
		var out []jsonLDNode
		for _, item := range t {
			out = append(out, flattenJSONLD(item)...)
		}
		return out
	default:
		return nil
	}
}

func isAcceptedType(node jsonLDNode) bool {
	switch v := node["@type"].(type) {
	case string:
		return acceptedJSONLDTypes[v]
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok && acceptedJSONLDTypes[s] {
				return true
			}
		}
	}
	return false
}

func stringField(node jsonLDNode, key string) string {
	if s, ok := node[key].(string); ok {
		return s
	}
	return ""
}

func firstNonEmptyString(node jsonLDNode, keys ...string) string {
	for _, k := range keys {
		if s := stringField(node, k); s != "" {
			return s
		}
	}
	return ""
}

func authorName(node jsonLDNode) string {
	switch v := node["author"].(type) {
	case string:
		return v
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return name
		}
	case []any:
		var names []string
		for _, a := range v {
			if m, ok := a.(map[string]any); ok {
				if name, ok := m["name"].(string); ok {
					names = append(names, name)
				}
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}

func publisherName(node jsonLDNode) string {
	if m, ok := node["publisher"].(map[string]any); ok {
		if name, ok := m["name"].(string); ok {
			return name
		}
	}
	return ""
}

// normalizePublishedTime re-formats a publisher-supplied date string to
// RFC3339 when it can be parsed; publishers emit dates in every format
// short of being sorted, so the ISO8601 fast path alone misses plenty.
func normalizePublishedTime(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format("2006-01-02T15:04:05Z07:00")
}

func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		return strings.EqualFold(t, "true"), strings.EqualFold(t, "true") || strings.EqualFold(t, "false")
	}
	return false, false
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		var n int
		_, err := parseIntStrict(t, &n)
		return n, err == nil
	}
	return 0, false
}

func parseIntStrict(s string, out *int) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errNotInt
		}
		n = n*10 + int(r-'0')
	}
	*out = n
	return n, nil
}
