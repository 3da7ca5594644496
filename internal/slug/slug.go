// Package slug provides canonical identifier normalization for listings and
// location names. Slugs double as permanent public URL segments, so every
// function here must be deterministic across process runs.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches characters outside the slug alphabet (word chars, spaces, hyphens).
	disallowedRe = regexp.MustCompile(`[^a-z0-9_\s-]`)
	// Matches whitespace runs (for replacement with a single hyphen).
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Matches multiple consecutive hyphens.
	multipleHyphenRe = regexp.MustCompile(`-+`)
)

// Make converts a listing name to a canonical URL-safe slug.
//
// Normalization rules:
//  1. Decompose accented characters (NFKD) and drop non-ASCII
//  2. Trim whitespace and lowercase
//  3. Remove characters outside [a-z0-9_ -]
//  4. Replace whitespace runs with single hyphens
//  5. Collapse multiple hyphens
//  6. Trim leading/trailing hyphens
//
// Examples:
//
//	"The Book Nook!"       → "the-book-nook"
//	"  Multiple   Spaces " → "multiple-spaces"
//	"Café -- Royale"       → "cafe-royale"
//	""                     → ""
//
// An empty result means "no slug available" and must never be used as a
// lookup key.
func Make(name string) string {
	s := norm.NFKD.String(name)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(strings.TrimSpace(s))

	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, "-")
	s = multipleHyphenRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return s
}

// NormalizeAdminName normalizes a free-text administrative name (county,
// state) for key construction: trims, lowercases, and strips a trailing
// "county" token so "Fulton County" and "fulton" compare equal.
func NormalizeAdminName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, " county")
	return strings.TrimSpace(s)
}

// NormalizeKey lowercases and trims a location field for use as an index key.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
