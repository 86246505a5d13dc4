package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var space = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace to a single space and trims the result
func CleanText(text string) string {
	return strings.TrimSpace(space.ReplaceAllString(text, " "))
}

// Digits returns only the ASCII digits of s
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ContainsAny reports whether s contains any of subs
func ContainsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ContainsFold reports whether s contains sub, ignoring case
func ContainsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// HasAnyPrefix reports whether s starts with any of prefixes
func HasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// TruncateText truncates text to a maximum length, preserving word boundaries
func TruncateText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	truncated := string(runes[:maxLength])
	if lastSpace := strings.LastIndexFunc(truncated, unicode.IsSpace); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
