package sanitizer

import (
	"strings"
	"unicode"
)

// RemoveControlChars drops control characters, keeping newlines and tabs.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// SingleLine collapses all whitespace, line breaks included, into single spaces.
// Used for values that end up in mail headers.
func SingleLine(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(RemoveControlChars(s), " "))
}
