// Package slug derives the canonical identifier used for file names and anchors.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedHyphens = regexp.MustCompile(`-{2,}`)
)

// Normalize converts an arbitrary school name into its slug: lower-case ASCII
// letters and digits joined by single hyphens. Diacritics are stripped to the
// base letter; anything else outside ASCII is dropped.
//
// Normalize is total and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	ascii := toASCII(name)
	collapsed := nonAlphanumeric.ReplaceAllString(strings.ToLower(ascii), "-")
	cleaned := strings.Trim(collapsed, "-")
	return repeatedHyphens.ReplaceAllString(cleaned, "-")
}

// toASCII decomposes s (NFKD) and removes every rune outside ASCII, which
// leaves base Latin letters in place of accented ones.
func toASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	out, _, err := transform.String(t, s)
	if err != nil {
		// Fall back to a plain filter so the function stays total.
		var b strings.Builder
		for _, r := range s {
			if r <= unicode.MaxASCII {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	return out
}
