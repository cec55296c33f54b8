// Package similarity scores how closely a user query matches a stored
// question. Scoring is a pluggable capability so the trigram strategy can be
// swapped for edit distance or embedding cosine similarity without touching
// the retriever's ranking policy.
package similarity

// Scorer computes a normalized similarity in [0, 1] between a query and a
// candidate text; higher means more relevant.
type Scorer interface {
	Score(query, candidate string) float64
}
