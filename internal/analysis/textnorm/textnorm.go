// Package textnorm folds free-form chat text into a comparable form:
// lowercase, accent-free, single-spaced.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases text, strips diacritics and collapses whitespace.
// Punctuation is preserved so callers can still split on separators.
func Fold(text string) string {
	// transform.Chain keeps internal state, build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}

// Tokens folds text and splits it into words made of letters and digits.
func Tokens(text string) []string {
	return strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SameWord reports whether two folded tokens name the same word,
// tolerating Spanish singular/plural differences ("cafe"/"cafes", "pan"/"panes").
func SameWord(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return b == a+"s" || b == a+"es"
}
