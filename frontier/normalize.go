package frontier

import "net/url"

// Normalize strips the fragment and, for non-root paths, a single trailing
// slash, preserving the root "/" (spec §4.I). Query strings are preserved —
// unlike rohmanhakim-docs-crawler's broader pkg/urlutil.Canonicalize (which
// also drops query/ports/case), this module's dedup rule is narrower, per
// spec.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.RawFragment = ""
	if len(u.Path) > 1 {
		for len(u.Path) > 1 && u.Path[len(u.Path)-1] == '/' {
			u.Path = u.Path[:len(u.Path)-1]
			break // strip exactly one trailing slash, not all
		}
	}
	return u.String(), nil
}
