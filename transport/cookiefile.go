package transport

import (
	"bufio"
	"strconv"
	"strings"
	"time"

	"github.com/brightwell-labs/fetchcore/models"
)

// ParseNetscapeCookieFile parses the classic Netscape cookie-jar text format
// (tab-delimited: domain, include-subdomains flag, path, secure flag,
// expiry, name, value), filtering nothing itself — callers filter by
// domain/path/secure per request, matching the cookie_file option in
// spec §6. Grounded on the same line-oriented, comment-stripping tokenizer
// style used throughout this module (see robots.ParseRobots), rather
// than a regex-based parser.
func ParseNetscapeCookieFile(content string) []models.Cookie {
	var out []models.Cookie
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		httpOnly := false
		if strings.HasPrefix(trimmed, "#HttpOnly_") {
			httpOnly = true
			trimmed = strings.TrimPrefix(trimmed, "#HttpOnly_")
		} else if strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Split(trimmed, "\t")
		if len(fields) < 7 {
			continue
		}
		secure := strings.EqualFold(fields[3], "TRUE")
		var expires time.Time
		if sec, err := strconv.ParseInt(fields[4], 10, 64); err == nil && sec > 0 {
			expires = time.Unix(sec, 0)
		}
		out = append(out, models.Cookie{
			Domain:   fields[0],
			Path:     fields[2],
			Secure:   secure,
			Expires:  expires,
			Name:     fields[5],
			Value:    fields[6],
			HTTPOnly: httpOnly,
		})
	}
	return out
}

// FilterCookies returns the subset of cookies applicable to a request against
// host/path, honoring the Secure attribute against isSecure (the request
// scheme is https).
func FilterCookies(cookies []models.Cookie, host, path string, isSecure bool) []models.Cookie {
	var out []models.Cookie
	for _, c := range cookies {
		if c.Secure && !isSecure {
			continue
		}
		domain := strings.TrimPrefix(c.Domain, ".")
		if domain != "" && !strings.HasSuffix(host, domain) {
			continue
		}
		if c.Path != "" && c.Path != "/" && !strings.HasPrefix(path, c.Path) {
			continue
		}
		if !c.Expires.IsZero() && c.Expires.Before(time.Now()) {
			continue
		}
		out = append(out, c)
	}
	return out
}
