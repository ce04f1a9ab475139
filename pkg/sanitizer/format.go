package sanitizer

import "strings"

// NormalizeEmail returns the canonical form used for lookups and uniqueness:
// surrounding whitespace removed and the whole address lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaskEmail keeps the first rune of the local part and the full domain.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return MaskString(email, 1)
	}

	runes := []rune(local)
	if len(runes) == 1 {
		return "*@" + domain
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-1) + "@" + domain
}

// MaskString keeps visibleChars runes on both ends and masks the rest.
// Strings too short to keep anything are masked entirely.
func MaskString(s string, visibleChars int) string {
	if visibleChars < 0 {
		visibleChars = 1
	}

	runes := []rune(s)
	length := len(runes)
	if length <= visibleChars*2 {
		return strings.Repeat("*", length)
	}

	return string(runes[:visibleChars]) +
		strings.Repeat("*", length-visibleChars*2) +
		string(runes[length-visibleChars:])
}
