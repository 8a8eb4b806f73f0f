// Package publisher turns documents into ingest events and publishes them to
// Kafka for running searchers to append.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/kafka"
)

// batchSize caps the number of events per Kafka write.
const batchSize = 100

// EventPublisher is the part of *kafka.Producer the publisher uses.
type EventPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// Publisher validates documents and publishes one ingest event per document.
type Publisher struct {
	producer EventPublisher
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a Publisher writing through producer.
func New(producer EventPublisher) *Publisher {
	return &Publisher{
		producer: producer,
		now:      time.Now,
		logger:   slog.Default().With("component", "publisher"),
	}
}

// Publish validates every document first, then publishes them in order.
// Every event carries source as its key so that all events of one source
// land on one partition and are appended in the order given. It returns
// the number of events published before any failure.
func (p *Publisher) Publish(ctx context.Context, source string, docs []document.Document) (int, error) {
	for i, doc := range docs {
		if err := validator.ValidateDocument(doc); err != nil {
			return 0, fmt.Errorf("document %d: %w", i, err)
		}
	}

	published := 0
	for start := 0; start < len(docs); start += batchSize {
		end := min(start+batchSize, len(docs))
		events := make([]kafka.Event, 0, end-start)
		for _, doc := range docs[start:end] {
			events = append(events, kafka.Event{
				Key: source,
				Value: ingestion.IngestEvent{
					EventID:    uuid.NewString(),
					Source:     source,
					Document:   doc,
					IngestedAt: p.now().UTC(),
				},
			})
		}
		if err := p.producer.PublishBatch(ctx, events); err != nil {
			return published, fmt.Errorf("publishing documents %d-%d: %w", start, end-1, err)
		}
		published += len(events)
		p.logger.Debug("batch published", "source", source, "count", len(events))
	}
	p.logger.Info("documents published", "source", source, "count", published)
	return published, nil
}
