// Package sanitize makes untrusted text safe to write to a terminal.
//
// Backend answers and user input are shown as literal text. Nothing in them
// may move the cursor, recolor the screen or smuggle in a hyperlink.
package sanitize

import (
	"html"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes terminal escape sequences and control characters.
// Newlines and tabs survive; carriage returns are dropped.
func Text(s string) string {
	if s == "" {
		return s
	}
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, s)
}

// Markup strips HTML elements (dropping script and style bodies),
// decodes entities, then applies Text.
func Markup(s string) string {
	if s == "" {
		return s
	}
	return Text(html.UnescapeString(strict.Sanitize(s)))
}

// Link returns s if it is safe to embed as a hyperlink target, or "".
func Link(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return ""
		}
	}
	return s
}
