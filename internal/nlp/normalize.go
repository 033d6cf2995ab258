// Package nlp holds the lexical stages of the mood pipeline: text normalization,
// VADER sentiment scoring and keyword topic detection.
package nlp

import (
	"regexp"
	"strings"
)

var (
	// a URL runs until any Unicode space, not just ASCII whitespace
	urlPattern        = regexp.MustCompile(`http[^\s\p{Z}\x{85}\x{1c}-\x{1f}]*`)
	disallowedPattern = regexp.MustCompile(`[^a-z0-9\s.,!?']`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// Normalize lowercases raw text, strips URL-like tokens, replaces characters outside
// [a-z0-9 .,!?'] with spaces and collapses whitespace. It is total and idempotent.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := strings.ToLower(raw)
	text = urlPattern.ReplaceAllString(text, "")
	text = disallowedPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// PostText builds the normalized text of a post from its title and body.
func PostText(title, body string) string {
	return Normalize(title + " " + body)
}

// stripURLs is the lighter cleanup applied before topic matching.
func stripURLs(text string) string {
	return urlPattern.ReplaceAllString(strings.ToLower(text), "")
}
