// Package importer consumes knowledge-import events from Kafka and persists
// them as retrievable records. Events with an empty question or answer are
// dropped here so the retrieval path never has to defend against them.
package importer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/knowbot/knowledge-chatbot/internal/ingestion"
	"github.com/knowbot/knowledge-chatbot/internal/knowledge"
	"github.com/knowbot/knowledge-chatbot/pkg/kafka"
	"github.com/knowbot/knowledge-chatbot/pkg/metrics"
)

// RecordStore persists one imported record.
type RecordStore interface {
	Insert(ctx context.Context, r knowledge.Record, sourceFile string) (int64, error)
}

// Importer writes consumed import events into the knowledge store.
type Importer struct {
	store   RecordStore
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates an Importer. metrics may be nil in tests.
func New(store RecordStore, m *metrics.Metrics) *Importer {
	return &Importer{
		store:   store,
		metrics: m,
		logger:  slog.Default().With("component", "importer"),
	}
}

// Handle is the kafka.MessageHandler for the knowledge-import topic.
// Returning nil for invalid events commits them; replaying a broken row
// would never succeed.
func (i *Importer) Handle(ctx context.Context, key []byte, value []byte) error {
	event, err := kafka.DecodeJSON[ingestion.ImportEvent](value)
	if err != nil {
		i.logger.Error("dropping undecodable import event", "key", string(key), "error", err)
		return nil
	}

	if strings.TrimSpace(event.Question) == "" || strings.TrimSpace(event.Answer) == "" {
		i.logger.Warn("dropping import event with empty question or answer",
			"category", event.Category,
			"source_file", event.SourceFile,
		)
		return nil
	}

	id, err := i.store.Insert(ctx, knowledge.Record{
		Category: event.Category,
		Question: event.Question,
		Answer:   event.Answer,
	}, event.SourceFile)
	if err != nil {
		return err
	}

	if i.metrics != nil {
		i.metrics.RecordsImportedTotal.Inc()
	}
	i.logger.Info("knowledge record imported",
		"id", id,
		"category", event.Category,
		"source_file", event.SourceFile,
	)
	return nil
}
