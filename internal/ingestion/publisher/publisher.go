// Package publisher turns accepted knowledge uploads into Kafka events for
// the importer to persist. Records are keyed by category so rows from one
// category land on one partition and keep their upload order.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/knowbot/knowledge-chatbot/internal/ingestion"
	"github.com/knowbot/knowledge-chatbot/pkg/kafka"
)

// Publisher produces ImportEvents to the knowledge-import topic.
type Publisher struct {
	producer *kafka.Producer
	logger   *slog.Logger
}

// New creates a Publisher with the given Kafka producer.
func New(producer *kafka.Producer) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   slog.Default().With("component", "import-publisher"),
	}
}

// Publish emits one event per record in a single batch write.
func (p *Publisher) Publish(ctx context.Context, req *ingestion.ImportRequest) (*ingestion.ImportResponse, error) {
	sourceFile := ""
	if req.FileName != "" {
		sourceFile = filepath.Base(req.FileName)
	}
	now := time.Now().UTC()

	events := make([]kafka.Event, 0, len(req.Records))
	for _, rec := range req.Records {
		events = append(events, kafka.Event{
			Key: rec.Category,
			Value: ingestion.ImportEvent{
				Category:   rec.Category,
				Question:   rec.Question,
				Answer:     rec.Answer,
				SourceFile: sourceFile,
				ImportedAt: now,
			},
		})
	}

	if err := p.producer.PublishBatch(ctx, events); err != nil {
		return nil, fmt.Errorf("publishing import batch: %w", err)
	}
	p.logger.Info("import batch published",
		"records", len(events),
		"source_file", sourceFile,
	)
	return &ingestion.ImportResponse{
		Accepted: len(events),
		Status:   "PENDING",
	}, nil
}
