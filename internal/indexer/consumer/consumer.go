// Package consumer reads ingest events from Kafka and appends their
// documents to the engine.
package consumer

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/kafka"
)

// dedupWindow is how many recent event IDs are remembered to drop
// redelivered messages.
const dedupWindow = 10000

// IndexConsumer wraps a Kafka consumer to drive the indexing pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler appending every ingest event
// to adder. Undecodable or invalid events are logged and skipped so they do
// not block the partition; an event ID seen recently is skipped as a
// redelivery.
func HandleMessage(adder ingestion.DocumentAdder) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	seen := newRecentSet(dedupWindow)
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		if err := validator.ValidateEvent(&event); err != nil {
			logger.Error("invalid ingest event",
				"event_id", event.EventID,
				"error", err,
			)
			return nil
		}
		if !seen.add(event.EventID) {
			logger.Info("duplicate ingest event skipped", "event_id", event.EventID)
			return nil
		}

		pos, err := adder.AddDocument(event.Document)
		if err != nil {
			logger.Error("failed to add document",
				"event_id", event.EventID,
				"error", err,
			)
			return nil
		}
		logger.Info("document indexed",
			"event_id", event.EventID,
			"source", event.Source,
			"position", pos,
		)
		return nil
	}
}

// recentSet remembers the last n keys added.
type recentSet struct {
	mu   sync.Mutex
	keys map[string]struct{}
	ring []string
	next int
}

func newRecentSet(n int) *recentSet {
	return &recentSet{
		keys: make(map[string]struct{}, n),
		ring: make([]string, n),
	}
}

// add records key and reports whether it was new.
func (r *recentSet) add(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[key]; ok {
		return false
	}
	if old := r.ring[r.next]; old != "" {
		delete(r.keys, old)
	}
	r.ring[r.next] = key
	r.keys[key] = struct{}{}
	r.next = (r.next + 1) % len(r.ring)
	return true
}
