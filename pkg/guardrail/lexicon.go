package guardrail

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon/profanity.yaml
var embeddedLexicon []byte

type LexiconEntry struct {
	Term   string `yaml:"term"`
	Strict bool   `yaml:"strict"`
}

type LexiconFile struct {
	Languages map[string][]LexiconEntry `yaml:"languages"`
}

// Term is a lexicon entry split into comparable tokens.
type Term struct {
	Display  string
	Language string
	Strict   bool
	tokens   []string
}

// ParseLexicon reads a YAML lexicon into match-ready terms.
func ParseLexicon(data []byte) ([]Term, error) {
	var file LexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lexicon: %w", err)
	}
	if len(file.Languages) == 0 {
		return nil, fmt.Errorf("lexicon has no languages")
	}

	var terms []Term
	for lang, entries := range file.Languages {
		for _, entry := range entries {
			raw := strings.TrimSpace(entry.Term)
			if raw == "" {
				continue
			}
			tokens := tokenize(raw)
			if !entry.Strict {
				for i, tok := range tokens {
					tokens[i] = fold(tok)
				}
			}
			if len(tokens) == 0 {
				continue
			}
			terms = append(terms, Term{
				Display:  raw,
				Language: lang,
				Strict:   entry.Strict,
				tokens:   tokens,
			})
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Language != terms[j].Language {
			return terms[i].Language < terms[j].Language
		}
		return terms[i].Display < terms[j].Display
	})
	return terms, nil
}

// LoadLexicon returns the embedded lexicon, or the file at path when set.
func LoadLexicon(path string) ([]Term, error) {
	if path == "" {
		return ParseLexicon(embeddedLexicon)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon %s: %w", path, err)
	}
	return ParseLexicon(data)
}
