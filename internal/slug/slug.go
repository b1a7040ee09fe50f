// Package slug derives URL-safe post identifiers from titles.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases title, drops every rune that is not an ASCII letter, digit or
// whitespace, trims, and joins the remaining words with single hyphens.
//
// "Hello, World!" becomes "hello-world". A title with no letters or digits
// yields the empty string.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "-")
}
