package frontier

import (
	"net/url"
	"strings"

	"github.com/brightwell-labs/fetchcore/models"
)

// Options configures a Frontier's construction (spec §4.I).
type Options struct {
	SameOrigin bool // default true
	Include    []string
	Exclude    []string
	MaxDepth   int
	MaxPages   int
	MaxQueued  int // default 10 * MaxPages
}

// DefaultOptions fills in the spec's stated defaults given maxDepth and
// maxPages.
func DefaultOptions(maxDepth, maxPages int) Options {
	return Options{SameOrigin: true, MaxDepth: maxDepth, MaxPages: maxPages, MaxQueued: maxPages * 10}
}

// Frontier is the crawl's URL queue plus its visited set — single-owner,
// never accessed concurrently (spec §5).
type Frontier struct {
	opts          Options
	startHost     string
	queue         fifoQueue[models.FrontierEntry]
	visited       set[string]
	processedCount int
}

// New constructs a Frontier for startURL with the given options.
func New(startURL string, opts Options) (*Frontier, error) {
	u, err := url.Parse(startURL)
	if err != nil {
		return nil, err
	}
	if opts.MaxQueued == 0 {
		opts.MaxQueued = opts.MaxPages * 10
	}
	return &Frontier{opts: opts, startHost: u.Host, visited: newSet[string]()}, nil
}

// Add attempts to enqueue raw at depth. Returns false per any of the
// rejection rules in spec §4.I.
func (f *Frontier) Add(raw string, depth int) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if f.opts.SameOrigin && u.Host != f.startHost {
		return false
	}
	if depth > f.opts.MaxDepth {
		return false
	}

	normalized, err := Normalize(raw)
	if err != nil {
		return false
	}

	if len(f.opts.Include) > 0 && !matchesAny(f.opts.Include, normalized, u.Path) {
		return false
	}
	if len(f.opts.Exclude) > 0 && matchesAny(f.opts.Exclude, normalized, u.Path) {
		return false
	}

	if f.visited.contains(normalized) {
		return false
	}
	if f.opts.MaxQueued > 0 && f.queue.size() >= f.opts.MaxQueued {
		return false
	}

	f.queue.enqueue(models.FrontierEntry{NormalizedURL: normalized, Depth: depth})
	f.visited.add(normalized)
	return true
}

// AddAll adds every url in urls at depth, returning the count actually
// accepted.
func (f *Frontier) AddAll(urls []string, depth int) int {
	count := 0
	for _, u := range urls {
		if f.Add(u, depth) {
			count++
		}
	}
	return count
}

// Next dequeues one entry, marks its normalized URL visited, and increments
// processedCount. Returns false when the queue is empty or processedCount
// has reached MaxPages.
func (f *Frontier) Next() (models.FrontierEntry, bool) {
	if f.opts.MaxPages > 0 && f.processedCount >= f.opts.MaxPages {
		return models.FrontierEntry{}, false
	}
	entry, ok := f.queue.dequeue()
	if !ok {
		return models.FrontierEntry{}, false
	}
	f.visited.add(entry.NormalizedURL)
	f.processedCount++
	return entry, true
}

// HasMore reports whether a subsequent Next could plausibly return an entry.
func (f *Frontier) HasMore() bool {
	if f.opts.MaxPages > 0 && f.processedCount >= f.opts.MaxPages {
		return false
	}
	return f.queue.size() > 0
}

// ProcessedCount returns the number of entries Next has yielded so far.
func (f *Frontier) ProcessedCount() int {
	return f.processedCount
}

func matchesAny(patterns []string, normalizedURL, path string) bool {
	for _, p := range patterns {
		target := normalizedURL
		if strings.HasPrefix(p, "/") {
			target = path
		}
		if matchGlob(p, target) {
			return true
		}
	}
	return false
}
