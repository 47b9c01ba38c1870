package transport

import (
	"strings"
	"testing"

	"github.com/brightwell-labs/fetchcore/models"
)

func TestParseNetscapeCookieFile(t *testing.T) {
	content := strings.Join([]string{
		"# Netscape HTTP Cookie File",
		".example.com\tTRUE\t/\tTRUE\t1999999999\tsession\tabc123",
		"#HttpOnly_.example.com\tTRUE\t/admin\tFALSE\t0\tauth\tzzz",
		"",
	}, "\n")

	cookies := ParseNetscapeCookieFile(content)
	if len(cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(cookies))
	}
	if cookies[0].Name != "session" || cookies[0].Value != "abc123" || !cookies[0].Secure {
		t.Errorf("unexpected first cookie: %+v", cookies[0])
	}
	if cookies[1].Name != "auth" || !cookies[1].HTTPOnly {
		t.Errorf("unexpected second cookie: %+v", cookies[1])
	}
}

func TestFilterCookies_DomainPathSecure(t *testing.T) {
	cookies := []models.Cookie{
		{Name: "a", Domain: "example.com", Path: "/", Secure: true},
		{Name: "b", Domain: "other.com", Path: "/", Secure: false},
	}
	out := FilterCookies(cookies, "www.example.com", "/articles", true)
	if len(out) != 1 || out[0].Name != "a" {
		t.Errorf("expected only cookie a to match, got %+v", out)
	}

	out = FilterCookies(cookies, "www.example.com", "/articles", false)
	if len(out) != 0 {
		t.Errorf("expected secure cookie to be filtered out on non-secure request, got %+v", out)
	}
}

func TestMaxResponseSize_Constant(t *testing.T) {
	if MaxResponseSize != 10*1024*1024 {
		t.Errorf("expected 10MiB cap, got %d", MaxResponseSize)
	}
}
