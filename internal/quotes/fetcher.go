package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Completer is the slice of the completion client the fetcher needs.
type Completer interface {
	Complete(ctx context.Context, promptText string) (string, error)
}

// QuoteStore is the slice of the store the fetcher needs.
type QuoteStore interface {
	ReplaceAll(ctx context.Context, batch []Quote) error
}

// fencePattern strips Markdown code fences the model wraps around JSON
// despite being told not to.
var fencePattern = regexp.MustCompile("(?m)^```json|```$")

// Fetcher asks the completion service for a batch of quotes and replaces the
// stored set with the result.
type Fetcher struct {
	completer Completer
	store     QuoteStore
	batchSize int
	logger    *slog.Logger
}

// NewFetcher creates a Fetcher producing batchSize quotes per run.
func NewFetcher(completer Completer, store QuoteStore, batchSize int) *Fetcher {
	return &Fetcher{
		completer: completer,
		store:     store,
		batchSize: batchSize,
		logger:    slog.Default().With("component", "quote-fetcher"),
	}
}

// quotePayload is the JSON item shape the prompt demands.
type quotePayload struct {
	Author  string `json:"author"`
	Message string `json:"message"`
}

// Run fetches one batch and stores it, returning the number of quotes saved.
func (f *Fetcher) Run(ctx context.Context) (int, error) {
	promptText := fmt.Sprintf(
		"Generate %d inspirational quotes. "+
			"They should come from anime, manga, manhwa, or developer life themes. "+
			"Return the result strictly as a valid JSON array. "+
			"Each item must have: author, message. "+
			"Do not include any text outside the JSON.",
		f.batchSize,
	)

	text, err := f.completer.Complete(ctx, promptText)
	if err != nil {
		return 0, fmt.Errorf("fetching quotes: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("completion service returned an empty response")
	}

	payload, err := parseQuotes(text)
	if err != nil {
		f.logger.Error("quote batch unparsable", "error", err, "raw", text)
		return 0, err
	}

	batch := make([]Quote, 0, len(payload))
	for _, q := range payload {
		author := q.Author
		if author == "" {
			author = "unknown"
		}
		batch = append(batch, Quote{Author: author, Message: q.Message})
	}

	if err := f.store.ReplaceAll(ctx, batch); err != nil {
		return 0, fmt.Errorf("storing quotes: %w", err)
	}
	f.logger.Info("quotes replaced", "count", len(batch))
	return len(batch), nil
}

// parseQuotes strips code fences and unmarshals the JSON array.
func parseQuotes(text string) ([]quotePayload, error) {
	cleaned := strings.TrimSpace(fencePattern.ReplaceAllString(strings.TrimSpace(text), ""))
	var payload []quotePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parsing quote JSON: %w", err)
	}
	return payload, nil
}
