package index

import (
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/vector"
	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
)

// UnrepresentableFunc is notified when a record field had no text form and
// was indexed as empty text.
type UnrepresentableFunc func(field string, kind document.ValueKind)

// Indexer builds indexes using a stop-word set.
type Indexer struct {
	stop            *tokenizer.StopWords
	logger          *slog.Logger
	unrepresentable UnrepresentableFunc
}

// NewIndexer returns an Indexer reading stop at build time. A nil stop uses
// tokenizer.Default().
func NewIndexer(stop *tokenizer.StopWords, logger *slog.Logger) *Indexer {
	if stop == nil {
		stop = tokenizer.Default()
	}
	if logger == nil {
		logger = slog.Default().With("component", "indexer")
	}
	return &Indexer{stop: stop, logger: logger}
}

// OnUnrepresentable registers fn to be called for every field value that
// canonicalized to empty text because it had no text form.
func (ix *Indexer) OnUnrepresentable(fn UnrepresentableFunc) {
	ix.unrepresentable = fn
}

// StopWords returns the set the indexer tokenizes with.
func (ix *Indexer) StopWords() *tokenizer.StopWords {
	return ix.stop
}

// Query builds the vector of a query string.
func (ix *Indexer) Query(text string) *vector.Vector {
	return vector.FromText(text, ix.stop)
}

// Build indexes doc. Text documents get a single vector; records get one
// vector per field, in field order, with unsupported values indexed as
// empty text.
func (ix *Indexer) Build(doc document.Document) (Index, error) {
	if err := doc.Validate(); err != nil {
		return Index{}, fmt.Errorf("indexing %s document: %w", doc.Kind(), err)
	}
	if doc.Kind() == document.KindText {
		return Simple(vector.FromText(doc.Text(), ix.stop)), nil
	}

	fields := doc.Fields()
	fi := NewFieldIndex(len(fields))
	for _, f := range fields {
		text, ok := f.Value.Canonical()
		if !ok {
			ix.logger.Debug("field value has no text form, indexing as empty",
				"field", f.Name,
				"kind", f.Value.Kind().String(),
				"condition", apperrors.ErrUnrepresentableFieldValue.Error(),
			)
			if ix.unrepresentable != nil {
				ix.unrepresentable(f.Name, f.Value.Kind())
			}
		}
		fi.Set(f.Name, vector.FromText(text, ix.stop))
	}
	return Complex(fi), nil
}
