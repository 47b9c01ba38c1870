package extract

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brightwell-labs/fetchcore/models"
)

// documentExtensions are file extensions treated as downloadable documents
// rather than generic links.
var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".zip": true, ".csv": true,
}

var videoProviders = map[string]string{
	"youtube.com":  "youtube",
	"youtu.be":     "youtube",
	"vimeo.com":    "vimeo",
	"dailymotion.com": "dailymotion",
}

// Media walks contentHTML for images, downloadable documents, and embedded
// video/audio, resolving relative URLs against sourceURL and de-duplicating
// by absolute URL. Grounded on the teacher's cleaner/extract.go
// ExtractImages, extended to the document/video/audio kinds spec §4.E's
// media pass covers that the teacher's image-only extractor did not.
func Media(contentHTML, sourceURL string) []models.MediaElement {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return nil
	}

	var media []models.MediaElement
	seen := make(map[string]bool)
	add := func(key string, el models.MediaElement) {
		if seen[key] {
			return
		}
		seen[key] = true
		media = append(media, el)
	}

	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		resolved := resolveMediaURL(base, src)
		if resolved == "" {
			return
		}
		alt, _ := s.Attr("alt")
		add(resolved, models.MediaElement{Kind: models.MediaImage, Src: resolved, Alt: strings.TrimSpace(alt)})
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := resolveMediaURL(base, href)
		if resolved == "" {
			return
		}
		ext := strings.ToLower(path.Ext(resolved))
		if !documentExtensions[ext] {
			return
		}
		add(resolved, models.MediaElement{
			Kind:      models.MediaDocument,
			Href:      resolved,
			Text:      strings.TrimSpace(s.Text()),
			Extension: ext,
		})
	})

	doc.Find("iframe[src], video[src], source[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		resolved := resolveMediaURL(base, src)
		if resolved == "" {
			return
		}
		kind := models.MediaVideo
		tag := goquery.NodeName(s)
		provider := detectProvider(resolved)
		if tag == "source" && strings.Contains(s.AttrOr("type", ""), "audio") {
			kind = models.MediaAudio
		}
		add(resolved, models.MediaElement{Kind: kind, Src: resolved, Provider: provider})
	})

	doc.Find("audio[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		resolved := resolveMediaURL(base, src)
		if resolved == "" {
			return
		}
		add(resolved, models.MediaElement{Kind: models.MediaAudio, Src: resolved})
	})

	return media
}

func resolveMediaURL(base *url.URL, raw string) string {
	if raw == "" {
		return ""
	}
	resolved, err := base.Parse(raw)
	if err != nil {
		return ""
	}
	if resolved.Scheme == "data" {
		return ""
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

func detectProvider(absURL string) string {
	u, err := url.Parse(absURL)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return videoProviders[host]
}
