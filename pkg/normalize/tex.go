package normalize

import (
	"regexp"
	"strings"
)

var (
	texMath = regexp.MustCompile(`\$[^$]*\$`)

	// \'e  \'{e}  {\"o}  \^\i
	texSymbolAccent = regexp.MustCompile(`\\[` + "`" + `'^"~=.]\s*\{?\s*(\\?[A-Za-z])(?:\s*\})?`)

	// \c{c}  \v s  \H{o}
	texLetterAccent = regexp.MustCompile(`\\[uvHcdbkrt](?:\s+|\s*\{\s*)(\\?[A-Za-z])(?:\s*\})?`)

	texLetter = regexp.MustCompile(`\\(ss|aa|AA|ae|AE|oe|OE|o|O|l|L|i|j)\b`)

	texCommand = regexp.MustCompile(`\\[A-Za-z]+\s*`)
	texEscape  = regexp.MustCompile(`\\([^A-Za-z])`)
)

var texLetters = map[string]string{
	"ss": "ss", "aa": "a", "AA": "A", "ae": "ae", "AE": "AE",
	"oe": "oe", "OE": "OE", "o": "o", "O": "O", "l": "l", "L": "L",
	"i": "i", "j": "j",
}

// DecodeTeX rewrites TeX accent and letter macros to plain letters and
// drops grouping braces. Unknown commands are removed, keeping their
// arguments.
func DecodeTeX(s string) string {
	if !strings.ContainsAny(s, `\{}~`) {
		return s
	}
	s = texSymbolAccent.ReplaceAllStringFunc(s, accentBase(texSymbolAccent))
	s = texLetterAccent.ReplaceAllStringFunc(s, accentBase(texLetterAccent))
	s = texLetter.ReplaceAllStringFunc(s, func(m string) string {
		return texLetters[m[1:]]
	})
	s = texCommand.ReplaceAllString(s, "")
	s = texEscape.ReplaceAllString(s, "$1")
	return strings.NewReplacer("{", "", "}", "", "~", " ").Replace(s)
}

// StripMath removes inline math segments ($...$).
func StripMath(s string) string {
	return texMath.ReplaceAllString(s, " ")
}

func accentBase(re *regexp.Regexp) func(string) string {
	return func(m string) string {
		sub := re.FindStringSubmatch(m)
		if len(sub) < 2 {
			return m
		}
		letter := strings.TrimPrefix(sub[1], `\`)
		return letter
	}
}
