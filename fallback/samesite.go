// Package fallback implements the fetch-level recovery chain that runs when
// DOM extraction under-performs or fails outright: mobile API, WordPress
// REST, Prism content API, WordPress AJAX, and the Next.js data-route
// fallback (spec §4.H). Shaped on the teacher's engine.Engine interface
// (Name/Fetch) applied to recovery strategies instead of browser engines.
package fallback

import (
	"net"
	"net/url"
	"strings"
)

// sameOrigin reports whether candidate shares scheme+host+port with base.
func sameOrigin(base, candidate *url.URL) bool {
	return strings.EqualFold(base.Scheme, candidate.Scheme) && strings.EqualFold(base.Host, candidate.Host)
}

// sameSite implements spec §4.H's Prism SSRF guard: the API host must share
// the page's last two domain labels, or match exactly for IP literals or
// single-label hosts (per the Open Question decision recorded in
// SPEC_FULL.md — no public-suffix-list lookup).
func sameSite(pageHost, apiHost string) bool {
	pageHost = strings.ToLower(stripPort(pageHost))
	apiHost = strings.ToLower(stripPort(apiHost))

	if net.ParseIP(pageHost) != nil || net.ParseIP(apiHost) != nil {
		return pageHost == apiHost
	}

	pageLabels := lastTwoLabels(pageHost)
	apiLabels := lastTwoLabels(apiHost)
	if pageLabels == "" || apiLabels == "" {
		return pageHost == apiHost
	}
	return pageLabels == apiLabels
}

func lastTwoLabels(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
