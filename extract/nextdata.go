package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/brightwell-labs/fetchcore/models"
	"github.com/brightwell-labs/fetchcore/validator"
)

// skippedBlockTypes are structured-block types the content walker drops
// entirely rather than flattening to text.
var skippedBlockTypes = map[string]bool{
	"inline-newsletter": true,
	"ad":                true,
	"related-content":   true,
	"inline-recirc":     true,
}

// NextData parses <script id="__NEXT_DATA__"> and walks its content in the
// order spec §4.E.5 describes: a caller-supplied JSON path, then an
// auto-detect probe, then the default story.body.content walker.
func NextData(doc *goquery.Document, jsonPath string) *models.Extraction {
	raw := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if raw == "" {
		return nil
	}
	var root any
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil
	}

	var body any
	if jsonPath != "" {
		body = navigateJSONPath(root, jsonPath)
	}
	if body == nil {
		body = autoDetectNextDataBody(root)
	}
	if body == nil {
		body = navigateJSONPath(root, "props.pageProps.story.body.content")
	}
	if body == nil {
		return nil
	}

	return buildNextDataExtraction(body)
}

func buildNextDataExtraction(body any) *models.Extraction {
	switch v := body.(type) {
	case string:
		if strings.Contains(v, "<") && strings.Contains(v, ">") {
			sanitized := bluemonday.UGCPolicy().Sanitize(v)
			text := strings.TrimSpace(validator.StripToText(sanitized))
			if len(text) < models.MinContentLength {
				return nil
			}
			return &models.Extraction{
				ContentHTML: sanitized,
				TextContent: text,
				MethodTag:   models.MethodNextDataHTML,
			}
		}
		text := strings.TrimSpace(v)
		if len(text) < models.MinContentLength {
			return nil
		}
		return &models.Extraction{
			ContentHTML: text,
			TextContent: text,
			MethodTag:   models.MethodNextData,
		}
	case []any:
		text := flattenBlocks(v)
		text = strings.TrimSpace(text)
		if len(text) < models.MinContentLength {
			return nil
		}
		return &models.Extraction{
			ContentHTML: text,
			TextContent: text,
			MethodTag:   models.MethodNextData,
		}
	default:
		return nil
	}
}

// autoDetectNextDataBody probes the conventional pageProps locations used by
// Next.js CMS integrations: {content,article,post,data}.{body,content}.
func autoDetectNextDataBody(root any) any {
	pageProps := navigateJSONPath(root, "props.pageProps")
	m, ok := pageProps.(map[string]any)
	if !ok {
		return nil
	}
	for _, container := range []string{"content", "article", "post", "data"} {
		c, ok := m[container].(map[string]any)
		if !ok {
			continue
		}
		if b, ok := c["body"]; ok {
			return b
		}
		if b, ok := c["content"]; ok {
			return b
		}
	}
	return nil
}

func navigateJSONPath(root any, path string) any {
	cur := root
	for _, segment := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[segment]
		if !ok {
			return nil
		}
	}
	return cur
}

// flattenBlocks walks an array of structured content blocks, emitting text
// per spec §4.E.5's per-type rules and recursing into nested "components".
func flattenBlocks(blocks []any) string {
	var b strings.Builder
	for _, raw := range blocks {
		block, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		blockType, _ := block["type"].(string)
		if skippedBlockTypes[blockType] {
			continue
		}

		switch blockType {
		case "PARAGRAPH", "HEADING", "SUBHEADING":
			if text, ok := block["text"].(string); ok {
				b.WriteString(text)
				b.WriteString("\n\n")
			}
		case "UNORDERED_LIST", "ORDERED_LIST":
			if items, ok := block["items"].([]any); ok {
				for _, item := range items {
					if s, ok := item.(string); ok {
						b.WriteString("- ")
						b.WriteString(s)
						b.WriteString("\n")
					}
				}
				b.WriteString("\n")
			}
		}

		if nested, ok := block["components"].([]any); ok {
			b.WriteString(flattenBlocks(nested))
		}
	}
	return b.String()
}
