package guardrail

// ProfanityDetector matches text against a multilingual lexicon.
// Loose terms ignore case and diacritics; strict terms ignore case only.
type ProfanityDetector struct {
	terms []Term
}

func NewProfanityDetector(terms []Term) *ProfanityDetector {
	return &ProfanityDetector{terms: terms}
}

// Detect returns the matched lexicon terms in order of first appearance.
func (d *ProfanityDetector) Detect(text string) []string {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	folded := make([]string, len(tokens))
	for i, tok := range tokens {
		folded[i] = fold(tok)
	}

	var matches []string
	seen := make(map[string]bool)
	for i := range tokens {
		for _, t := range d.terms {
			if seen[t.Display] {
				continue
			}
			source := folded
			if t.Strict {
				source = tokens
			}
			if hasSequenceAt(source, t.tokens, i) {
				seen[t.Display] = true
				matches = append(matches, t.Display)
			}
		}
	}
	return matches
}

func hasSequenceAt(tokens, seq []string, at int) bool {
	if at+len(seq) > len(tokens) {
		return false
	}
	for j, s := range seq {
		if tokens[at+j] != s {
			return false
		}
	}
	return true
}
