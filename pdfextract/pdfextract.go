// Package pdfextract implements the PDF branch (spec §4.H): detecting PDF
// responses and extracting plain text, grounded on Davidmbp1-Grant_finder's
// internal/ingest/pdf_deadline_extractor.go extractPDFText (rsc.io/pdf
// Reader/Page/Content().Text walk, with a panic recover — this parser is
// known to panic on malformed input).
package pdfextract

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	rpdf "rsc.io/pdf"

	"github.com/brightwell-labs/fetchcore/models"
)

var pdfExtensionRe = regexp.MustCompile(`(?i)\.pdf$`)

// IsPDFURL reports whether rawURL ends in .pdf (case-insensitive). A URL
// with a query string or fragment after .pdf is not matched.
func IsPDFURL(rawURL string) bool {
	return pdfExtensionRe.MatchString(path.Ext(rawURL)) || pdfExtensionRe.MatchString(rawURL)
}

// IsPDFContentType reports whether a Content-Type header value indicates a
// PDF payload.
func IsPDFContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/pdf")
}

// Extract converts body (an 8-bit-clean string holding the raw response
// bytes) to a byte buffer and runs the PDF text extractor, emitting the
// pdf-parse method tag. The buffer conversion is lossless over the full
// 0-255 byte range since Go strings are themselves byte slices.
func Extract(body string) (*models.Extraction, error) {
	text, title, err := extractText([]byte(body))
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if len(text) < models.MinContentLength {
		return nil, fmt.Errorf("pdfextract: extracted text below MinContentLength")
	}

	return &models.Extraction{
		Title:       title,
		ContentHTML: text,
		TextContent: text,
		MethodTag:   models.MethodPDFParse,
	}, nil
}

func extractText(content []byte) (text string, title string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("pdfextract: parser panic: %v", recovered)
			text, title = "", ""
		}
	}()

	reader, err := rpdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", "", err
	}

	var builder strings.Builder
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		for _, fragment := range page.Content().Text {
			builder.WriteString(fragment.S)
			builder.WriteString(" ")
		}
		builder.WriteString("\n")
	}

	title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())

	return builder.String(), title, nil
}
