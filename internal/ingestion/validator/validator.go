// Package validator checks raw document payloads before they reach the
// engine: size limits, decodability and document shape.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
)

const (
	maxFields         = 256
	maxFieldNameBytes = 256
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// Unwrap lets callers match validation failures with ErrInvalidDocument.
func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidDocument
}

// DecodeDocument checks the size of data and decodes it as one JSON or YAML
// document.
func DecodeDocument(data []byte, maxBytes int) (document.Document, error) {
	if len(data) == 0 {
		return document.Document{}, &ValidationError{Fields: map[string]string{"document": "body is required"}}
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return document.Document{}, &ValidationError{Fields: map[string]string{
			"document": fmt.Sprintf("must be at most %d bytes, got %d", maxBytes, len(data)),
		}}
	}
	doc, err := document.DecodeOne(data)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDocument) {
			return document.Document{}, err
		}
		return document.Document{}, apperrors.InvalidDocument("%v", err)
	}
	if err := ValidateDocument(doc); err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

// ValidateDocument enforces shape limits on an already decoded document.
func ValidateDocument(doc document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	if doc.Kind() != document.KindRecord {
		return nil
	}
	errs := make(map[string]string)
	if doc.NumFields() > maxFields {
		errs["document"] = fmt.Sprintf("must have at most %d fields, got %d", maxFields, doc.NumFields())
	}
	for _, f := range doc.Fields() {
		if len(f.Name) > maxFieldNameBytes {
			errs[f.Name[:32]+"..."] = fmt.Sprintf("field name must be at most %d bytes", maxFieldNameBytes)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// ValidateEvent checks an ingest event decoded from Kafka.
func ValidateEvent(event *ingestion.IngestEvent) error {
	errs := make(map[string]string)
	if strings.TrimSpace(event.EventID) == "" {
		errs["event_id"] = "event_id is required"
	} else if len(event.EventID) > 255 {
		errs["event_id"] = "event_id must be at most 255 characters"
	}
	if event.Document.Kind() == document.KindInvalid {
		errs["document"] = "document is required"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return ValidateDocument(event.Document)
}
