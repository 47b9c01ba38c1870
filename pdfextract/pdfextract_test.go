package pdfextract

import "testing"

func TestIsPDFURL(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/report.pdf":        true,
		"https://example.com/report.PDF":        true,
		"https://example.com/report.pdf?v=1":    false,
		"https://example.com/report.html":       false,
	}
	for url, want := range cases {
		if got := IsPDFURL(url); got != want {
			t.Errorf("IsPDFURL(%q) = %v, want %v", url, got, want)
		}
	}
}

func TestIsPDFContentType(t *testing.T) {
	if !IsPDFContentType("application/pdf") {
		t.Error("expected application/pdf to be detected")
	}
	if !IsPDFContentType("application/pdf; charset=binary") {
		t.Error("expected parameterized content-type to be detected")
	}
	if IsPDFContentType("text/html") {
		t.Error("expected text/html to not be detected as PDF")
	}
}

func TestExtract_RejectsMalformedPDFWithoutPanicking(t *testing.T) {
	_, err := Extract("not a real pdf")
	if err == nil {
		t.Error("expected an error for malformed PDF bytes")
	}
}
