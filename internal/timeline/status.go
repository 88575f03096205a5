package timeline

import "strings"

// DefaultStatuses are the label and column names that mark an issue as started.
var DefaultStatuses = []string{"in progress", "doing", "wip"}

// Vocabulary is a case-insensitive set of "work has started" names.
type Vocabulary struct {
	names map[string]struct{}
}

// NewVocabulary builds a vocabulary from names. Blank names are ignored.
func NewVocabulary(names ...string) Vocabulary {
	v := Vocabulary{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		v.names[n] = struct{}{}
	}
	return v
}

// DefaultVocabulary returns the vocabulary built from DefaultStatuses.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(DefaultStatuses...)
}

// Contains reports whether name, lower-cased, is in the vocabulary.
func (v Vocabulary) Contains(name string) bool {
	_, ok := v.names[strings.ToLower(name)]
	return ok
}

// Len returns the number of names in the vocabulary.
func (v Vocabulary) Len() int {
	return len(v.names)
}
