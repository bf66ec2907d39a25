package clippings

import (
	"regexp"
	"strings"
)

var (
	authorQuotePattern  = regexp.MustCompile("[\"'`“”‘’]")
	authorMidDotPattern = regexp.MustCompile("[·•]")
	authorSpacePattern  = regexp.MustCompile(`\s+`)
)

// NormalizeAuthorKey lowercases an author name and strips quotes, middle
// dots, and redundant whitespace, so the same author matches across minor
// formatting differences between exports.
func NormalizeAuthorKey(value string) string {
	key := strings.ToLower(value)
	key = authorQuotePattern.ReplaceAllString(key, "")
	key = authorMidDotPattern.ReplaceAllString(key, "")
	key = authorSpacePattern.ReplaceAllString(key, " ")
	return strings.TrimSpace(key)
}
