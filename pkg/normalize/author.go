package normalize

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AuthorSeparator joins per-person tokens in a normalized author list.
const AuthorSeparator = ";"

var personSplit = regexp.MustCompile(`(?i)\s+and\s+|;`)

// NormalizeAuthor reduces an author list to a sorted, ";"-joined list of
// "surname,initial" tokens.
//
// Each person may be written "Last, First", "Last, Jr, First" or
// "First von Last"; lowercase particles before the final word belong to
// the surname. Surnames lose spaces, hyphens and apostrophes so
// "van der Berg, Hans" and "Hans van der Berg" both become "vanderberg,h".
// A trailing "and others" is ignored.
func NormalizeAuthor(text string) string {
	text = DecodeTeX(text)

	var tokens []string
	for _, person := range personSplit.Split(text, -1) {
		if tok := personToken(person); tok != "" {
			tokens = append(tokens, tok)
		}
	}
	slices.Sort(tokens)
	return strings.Join(tokens, AuthorSeparator)
}

func personToken(person string) string {
	person = strings.TrimSpace(person)
	if person == "" {
		return ""
	}

	surname, given := splitName(person)
	last := strings.Join(words(Fold(surname)), "")
	initial := firstInitial(given)

	var tok string
	switch {
	case last == "":
		// A lone given name is better than nothing; keep it as the surname.
		tok = strings.Join(words(Fold(given)), "")
	case initial == "":
		tok = last
	default:
		tok = last + "," + initial
	}
	if tok == "others" {
		return ""
	}
	return tok
}

// splitName separates a person's name into surname and given names.
func splitName(person string) (surname, given string) {
	if strings.Contains(person, ",") {
		parts := strings.Split(person, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		surname = parts[0]
		switch {
		case len(parts) >= 3:
			given = parts[2]
		case len(parts) == 2:
			given = parts[1]
		}
		return surname, given
	}

	fields := strings.Fields(person)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	}

	// "First von Last": the surname starts at the first lowercase particle.
	// A leading particle means there is no given name at all.
	for i := 0; i < len(fields)-1; i++ {
		if r, _ := utf8.DecodeRuneInString(fields[i]); unicode.IsLower(r) {
			return strings.Join(fields[i:], " "), strings.Join(fields[:i], " ")
		}
	}
	n := len(fields) - 1
	return fields[n], strings.Join(fields[:n], " ")
}

func firstInitial(given string) string {
	for _, r := range Fold(given) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(r)
		}
	}
	return ""
}
