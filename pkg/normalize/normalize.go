// Package normalize canonicalizes noisy bibliographic text so that two
// spellings of the same author list or title compare equal.
//
// Both normalizers are pure, total and idempotent: they never fail, always
// return a string, and normalizing their own output is a no-op. They are
// heuristics; distinct people or titles can collide, which the collision
// report surfaces downstream.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Func is a text normalization function.
type Func func(string) string

// letters without a canonical decomposition into base letter + mark.
var foldReplacer = strings.NewReplacer(
	"ø", "o",
	"ł", "l",
	"æ", "ae",
	"œ", "oe",
	"đ", "d",
	"ð", "d",
	"ı", "i",
	"þ", "th",
	"ß", "ss",
)

// Fold case-folds s and reduces accented letters to their base form.
func Fold(s string) string {
	// Casers and transformers keep internal state, so build them per call.
	s = cases.Fold().String(s)
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = stripped
	}
	return foldReplacer.Replace(s)
}

// words splits s into runs of letters and digits. Apostrophes are dropped
// without splitting so "Gödel's" yields one word.
func words(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '\'' || r == '’':
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}
