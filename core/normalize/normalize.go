// Package normalize canonicalizes product and carrier text into lookup keys.
//
// Only spaces and ASCII-equivalent case are folded. Full-width punctuation
// and other width variants are left as they are, so "ＡＢＣ" and "abc" are
// different keys.
package normalize

import (
	"strings"
	"unicode"
)

// Normalize returns the lookup key for text: trimmed, lower-cased and with
// every half-width and full-width space character removed. The empty key
// is returned for empty input and never matches an index entry.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if isSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, text)
}

// Contains reports whether the normalized text contains the normalized
// marker. An empty marker never matches.
func Contains(text, marker string) bool {
	m := Normalize(marker)
	if m == "" {
		return false
	}
	return strings.Contains(Normalize(text), m)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\u00a0', '\u202f', '\u205f', '\u3000':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
