package normalize

import "strings"

var leadingArticles = map[string]bool{"a": true, "an": true, "the": true}

// NormalizeTitle case-folds a title, strips accents, inline math and
// punctuation, and drops leading English articles. Words are joined by
// single spaces.
func NormalizeTitle(text string) string {
	text = StripMath(text)
	text = DecodeTeX(text)
	ws := words(Fold(text))

	// Keep at least one word so a title like "The" survives.
	for len(ws) > 1 && leadingArticles[ws[0]] {
		ws = ws[1:]
	}
	return strings.Join(ws, " ")
}
