// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"regexp"
	"strings"
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var (
	htmlTag    = regexp.MustCompile(`<[^>]+>`)
	htmlEntity = regexp.MustCompile(`&[a-zA-Z#0-9]+;`)
)

// StripHTML removes tags and entities from card text imported from Anki or
// web sources, collapsing the freed-up whitespace.
func StripHTML(s string) string {
	s = htmlTag.ReplaceAllString(s, " ")
	s = htmlEntity.ReplaceAllString(s, " ")
	return CollapseSpaces(s)
}

// CollapseSpaces trims s and squeezes runs of whitespace to single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
