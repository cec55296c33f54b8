// Package knowledge defines the stored question/answer records that serve as
// retrieval ground truth, and their PostgreSQL store.
package knowledge

// Record is one curated (category, question, answer) triple. The question is
// the reference text similarity is measured against; the answer is what ends
// up in front of the user when the record is selected.
type Record struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}
