// Package extract pulls titles, icons and readable text out of raw HTML.
//
// Everything here is a pure function over strings. Head elements are read
// with the x/net/html tokenizer, body content with precompiled expressions and
// a small balanced-tag walker. No DOM is built. All lengths are counted in
// runes.
package extract

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Ellipsis marks truncated text.
const Ellipsis = "..."

var (
	strict      = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)
	multiSpaces = regexp.MustCompile(`\s+`)
)

// CleanText strips every tag from fragment, decodes entities and collapses
// whitespace runs to a single space.
func CleanText(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := strict.Sanitize(fragment)
	text = html.UnescapeString(text)
	text = multiSpaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Len returns the length of s in runes.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate cuts s to at most n runes and appends Ellipsis when it did cut.
func Truncate(s string, n int) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + Ellipsis
}
