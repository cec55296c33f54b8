// Package quotes holds the quote-of-the-day subsystem: a PostgreSQL store,
// a read endpoint, and a batch fetcher that asks the completion service for
// a fresh set of quotes.
package quotes

import "time"

// Quote is one stored quote. Quotes age out after TTL; the fetch job
// replaces the whole set on each run.
type Quote struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the quote is older than ttl.
func (q Quote) Expired(ttl time.Duration) bool {
	return time.Since(q.CreatedAt) > ttl
}
