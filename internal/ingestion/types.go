// Package ingestion defines the payloads that carry new documents into a
// running engine, over HTTP or Kafka.
package ingestion

import (
	"time"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
)

// IngestEvent is the Kafka message payload announcing a document to append.
type IngestEvent struct {
	EventID    string            `json:"event_id"`
	Source     string            `json:"source,omitempty"`
	Document   document.Document `json:"document"`
	IngestedAt time.Time         `json:"ingested_at"`
}

// IngestResponse is returned after a document has been appended.
type IngestResponse struct {
	Position  int    `json:"document_position"`
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

// DocumentAdder appends a document and reports its position.
type DocumentAdder interface {
	AddDocument(doc document.Document) (int, error)
	Len() int
}
