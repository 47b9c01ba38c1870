// Package siteconfig holds the read-only per-host flag table that lets the
// extraction orchestrator and fallback chain take config-driven fast paths
// instead of racing every strategy (spec §4.G step 4, §4.H mobile-API/
// next-data checks). Populated once at startup; no library reduces a static
// map, so this package is intentionally stdlib-only.
package siteconfig

import (
	"net/url"
	"strings"
)

// Entry is one host's configuration flags.
type Entry struct {
	PreferNextData bool
	PreferJSONLD   bool
	NextDataPath   string
	IsMobileAPISite bool
	NextBuildID    string
}

// Table is a read-only per-host lookup. The zero value has no entries; use
// New to build one from a map literal.
type Table struct {
	byHost map[string]Entry
}

// New builds a Table from a host-to-Entry map. Hosts are matched
// case-insensitively.
func New(entries map[string]Entry) *Table {
	byHost := make(map[string]Entry, len(entries))
	for host, entry := range entries {
		byHost[strings.ToLower(host)] = entry
	}
	return &Table{byHost: byHost}
}

// Lookup returns the Entry configured for rawURL's host, or the zero Entry
// if the host has no configuration.
func (t *Table) Lookup(rawURL string) Entry {
	if t == nil {
		return Entry{}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Entry{}
	}
	return t.byHost[strings.ToLower(u.Hostname())]
}
