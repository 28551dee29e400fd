package guardrail

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenize lowercases text and splits it on anything that is not a letter or digit.
func tokenize(text string) []string {
	lowered := strings.ToLower(norm.NFC.String(text))
	return strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// fold strips diacritics; đ has no combining form and is mapped by hand.
func fold(token string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, token)
	if err != nil {
		out = token
	}
	return strings.ReplaceAll(out, "đ", "d")
}
