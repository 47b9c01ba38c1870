package frontier

import "strings"

// matchGlob implements spec §4.I's conventional glob semantics: `*` matches
// any run of non-`/` characters, `**` matches any characters including `/`.
// Patterns starting with `/` match against path only; otherwise against the
// full URL string. Matching is case-sensitive.
func matchGlob(pattern, text string) bool {
	return globMatch(pattern, text)
}

// globMatch is a small recursive-descent matcher; patterns here are short
// (site-configured include/exclude lists), so no backtracking-safety
// concerns arise the way they do for attacker-controlled HTML (cf.
// validator.StripToText).
func globMatch(pattern, text string) bool {
	return matchFrom(pattern, text)
}

func matchFrom(pattern, text string) bool {
	for len(pattern) > 0 {
		switch {
		case strings.HasPrefix(pattern, "**"):
			rest := pattern[2:]
			if rest == "" {
				return true
			}
			for i := 0; i <= len(text); i++ {
				if matchFrom(rest, text[i:]) {
					return true
				}
			}
			return false
		case strings.HasPrefix(pattern, "*"):
			rest := pattern[1:]
			for i := 0; i <= len(text); i++ {
				if strings.ContainsRune(text[:i], '/') {
					break
				}
				if matchFrom(rest, text[i:]) {
					return true
				}
			}
			return false
		default:
			if len(text) == 0 || pattern[0] != text[0] {
				return false
			}
			pattern = pattern[1:]
			text = text[1:]
		}
	}
	return len(text) == 0
}
