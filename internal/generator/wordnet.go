package generator

import (
	"fmt"
	"strings"

	"github.com/fluhus/gostuff/nlp/wordnet"
)

// WordNetLookup serves synonym queries from an on-disk WordNet database.
// The whole database is parsed into memory once at startup, so lookups
// are cheap map reads.
type WordNetLookup struct {
	wn *wordnet.WordNet
}

// NewWordNetLookup parses the WordNet dict directory at dir (the one
// holding data.noun, index.noun, and friends).
func NewWordNetLookup(dir string) (*WordNetLookup, error) {
	wn, err := wordnet.Parse(dir)
	if err != nil {
		return nil, fmt.Errorf("parse wordnet database: %w", err)
	}
	return &WordNetLookup{wn: wn}, nil
}

// Alternatives returns the lemmas sharing a synset with word, across all
// parts of speech, with multi-word underscores converted to spaces and
// the word itself excluded.
func (l *WordNetLookup) Alternatives(word string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, synsets := range l.wn.Search(strings.ToLower(word)) {
		for _, ss := range synsets {
			for _, w := range ss.Word {
				s := strings.ReplaceAll(w, "_", " ")
				if strings.EqualFold(s, word) {
					continue
				}
				k := strings.ToLower(s)
				if seen[k] {
					continue
				}
				seen[k] = true
				out = append(out, s)
			}
		}
	}
	return out
}
