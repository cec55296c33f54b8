package similarity

import (
	"strings"
	"unicode"
)

// Trigram scores strings by the Jaccard similarity of their trigram sets,
// matching PostgreSQL pg_trgm semantics: input is lowercased, split on
// non-alphanumeric runes, and each word is padded with two leading and one
// trailing space before its overlapping 3-rune substrings are collected.
// The measure is symmetric and tolerant of typos and word reordering.
type Trigram struct{}

// NewTrigram returns the trigram scorer.
func NewTrigram() *Trigram {
	return &Trigram{}
}

// Score returns |A ∩ B| / |A ∪ B| over the two trigram sets. Strings that
// produce no trigrams (empty or punctuation-only) score 0 against anything.
func (t *Trigram) Score(query, candidate string) float64 {
	a := trigramSet(query)
	b := trigramSet(candidate)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for g := range a {
		if _, ok := b[g]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// trigramSet extracts the set of unique trigrams from s.
func trigramSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range splitWords(strings.ToLower(s)) {
		padded := []rune("  " + word + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = struct{}{}
		}
	}
	return set
}

// splitWords breaks s into maximal runs of letters and digits.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
