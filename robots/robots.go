// Package robots parses robots.txt (wildcard-user-agent Disallow/Sitemap
// extraction) and sitemap XML (urlset/sitemapindex), per spec §4.J.
//
// The line-scanner is grounded on rohmanhakim-docs-crawler's
// internal/robots/fetcher.go ParseRobotsTxt (comment-stripping,
// field:value splitting, per-group accumulation), narrowed to this spec's
// rule that only the wildcard "*" group's rules are retained — that
// teacher-adjacent repo instead keeps every group and lets mapper.go select
// the best-matching one later, which spec.md does not ask for here.
package robots

import (
	"bufio"
	"strings"

	"github.com/brightwell-labs/fetchcore/models"
)

// ParseRobots walks text line-by-line, tracking the active user-agent group.
// Disallow rules apply only while the active group is "*"; Sitemap
// directives are collected at file scope regardless of group. Comments and
// blank lines are ignored.
func ParseRobots(text string) models.RobotsRules {
	var rules models.RobotsRules
	activeIsWildcard := false
	inUAAnnouncement := false // true while consecutive user-agent lines are still being collected for the current group

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		colon := strings.IndexByte(line, ':')
		if colon == -1 {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(line[:colon]))
		value := strings.TrimSpace(line[colon+1:])

		switch field {
		case "user-agent":
			if !inUAAnnouncement {
				activeIsWildcard = false
			}
			if value == "*" {
				activeIsWildcard = true
			}
			inUAAnnouncement = true
		case "disallow":
			inUAAnnouncement = false
			if activeIsWildcard && value != "" {
				rules.DisallowPaths = append(rules.DisallowPaths, value)
			}
		case "allow", "crawl-delay":
			inUAAnnouncement = false
		case "sitemap":
			if value != "" {
				rules.SitemapURLs = append(rules.SitemapURLs, value)
			}
		}
	}
	return rules
}
