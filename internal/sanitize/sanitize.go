package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// Title strips control characters from s and truncates it to maxLen
// runes, for display strings that must not carry terminal escape
// sequences. No caller in this module uses it; thread names are stored
// as given.
func Title(s string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}

// Content strips any HTML markup from s using a strict policy, so
// message content stored in an event log can be rendered later by an
// HTML-based viewer without risk of stored script injection. Plain
// text content passes through unchanged aside from entity decoding.
func Content(s string) string {
	stripped := htmlPolicy.Sanitize(s)
	return html.UnescapeString(stripped)
}
