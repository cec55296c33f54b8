// Package retriever ranks knowledge records against a raw user query and
// returns a bounded top-K of relevant matches. An empty result is a normal
// outcome: it signals that the knowledge base has nothing to say, and the
// completion service must not be contacted for that request.
package retriever

import (
	"context"
	"fmt"
	"sort"

	"github.com/knowbot/knowledge-chatbot/internal/chat/similarity"
	"github.com/knowbot/knowledge-chatbot/internal/knowledge"
)

// Store supplies the retrievable knowledge records.
type Store interface {
	Retrievable(ctx context.Context) ([]knowledge.Record, error)
}

// Match pairs a knowledge record with its similarity to the query.
type Match struct {
	Record     knowledge.Record
	Similarity float64
}

// Retriever applies the ranking policy: score every record, drop scores at
// or below the relevance floor, sort descending, truncate to the top K.
type Retriever struct {
	store     Store
	scorer    similarity.Scorer
	threshold float64
	limit     int
}

// New creates a Retriever. Scores at or below threshold are treated as
// noise; at most limit matches are returned.
func New(store Store, scorer similarity.Scorer, threshold float64, limit int) *Retriever {
	return &Retriever{
		store:     store,
		scorer:    scorer,
		threshold: threshold,
		limit:     limit,
	}
}

// Retrieve returns the top matches for query, ordered by similarity
// descending. Ties keep store order, which has no effect on the final answer
// because all survivors are flattened into one prompt.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Match, error) {
	records, err := r.store.Retrievable(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge records: %w", err)
	}

	matches := make([]Match, 0, len(records))
	for _, rec := range records {
		score := r.scorer.Score(query, rec.Question)
		if score <= r.threshold {
			continue
		}
		matches = append(matches, Match{Record: rec, Similarity: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > r.limit {
		matches = matches[:r.limit]
	}
	return matches, nil
}
