// Package indexer owns the search engine: it indexes documents into the
// store and answers queries against it.
package indexer

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/vector"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/metrics"
)

const (
	ModeImmediate = "immediate"
	ModeDeferred  = "deferred"
)

// Engine indexes an ordered, append-only collection of documents and
// scores queries against it. It is safe for concurrent use: a search scores
// the documents present when it was invoked and ignores later appends.
type Engine struct {
	id      string
	store   *store.Store
	indexer *index.Indexer
	stop    *tokenizer.StopWords
	metrics *metrics.Metrics
	logger  *slog.Logger
	shards  int
	pool    *ants.Pool
}

// Option configures an Engine.
type Option func(*Engine)

// WithStopWords makes the engine tokenize with stop instead of the shared
// default set.
func WithStopWords(stop *tokenizer.StopWords) Option {
	return func(e *Engine) { e.stop = stop }
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics instruments the engine.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithShards scores large stores in up to n concurrent partitions. Results
// are identical to a sequential scan.
func WithShards(n int) Option {
	return func(e *Engine) { e.shards = n }
}

// NewEngine indexes docs in order. The first invalid document aborts
// construction.
func NewEngine(docs []document.Document, opts ...Option) (*Engine, error) {
	e := &Engine{
		id:     uuid.NewString(),
		stop:   tokenizer.Default(),
		logger: slog.Default().With("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.stop == nil {
		e.stop = tokenizer.Default()
	}
	if e.shards > 1 {
		pool, err := ants.NewPool(max(e.shards, 2*runtime.GOMAXPROCS(0)), ants.WithNonblocking(true))
		if err != nil {
			return nil, fmt.Errorf("creating scan pool: %w", err)
		}
		e.pool = pool
	}
	e.indexer = index.NewIndexer(e.stop, e.logger)
	e.indexer.OnUnrepresentable(func(_ string, kind document.ValueKind) {
		e.metrics.Unrepresentable(kind.String())
	})
	e.store = store.New(len(docs))

	start := time.Now()
	for i, doc := range docs {
		idx, err := e.indexer.Build(doc)
		if err != nil {
			e.metrics.DocumentRejected()
			e.Close()
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		n := e.store.Append(doc, idx) + 1
		e.metrics.DocumentIndexed(doc.Kind().String(), n)
	}
	e.metrics.SetStopWords(e.stop.Len())
	e.logger.Info("engine ready",
		"documents", len(docs),
		"stop_words", e.stop.Len(),
		"duration", time.Since(start),
	)
	return e, nil
}

// Close releases the scan workers started by WithShards. Searches after
// Close still work, each partition on its own goroutine.
func (e *Engine) Close() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// StopWords returns the stop-word set the engine tokenizes with. Changes to
// it affect later queries and additions, never documents already indexed.
func (e *Engine) StopWords() *tokenizer.StopWords {
	return e.stop
}

// SearchImmediate scores query against every stored document and returns
// the matches best first. Fields restricts record documents to the named
// fields; none means all fields.
func (e *Engine) SearchImmediate(query string, fields ...string) []ranker.Result {
	start := time.Now()
	snap := e.store.Snapshot()
	results := e.execute(snap, e.indexer.Query(query), executor.NewFilter(fields...))
	e.observe(ModeImmediate, query, fields, snap.Len(), len(results), time.Since(start))
	return results
}

// SearchDeferred prepares the same search as SearchImmediate without running
// it. The query is tokenized and the store snapshotted now; scoring happens
// on the first Wait, so the result equals what SearchImmediate returns at
// this instant even if documents are added in between.
func (e *Engine) SearchDeferred(query string, fields ...string) *executor.Pending {
	snap := e.store.Snapshot()
	q := e.indexer.Query(query)
	filter := executor.NewFilter(fields...)
	return executor.NewPending(func() []ranker.Result {
		start := time.Now()
		results := e.execute(snap, q, filter)
		e.observe(ModeDeferred, query, fields, snap.Len(), len(results), time.Since(start))
		return results
	})
}

func (e *Engine) execute(snap store.Snapshot, q *vector.Vector, filter executor.Filter) []ranker.Result {
	if e.shards > 1 {
		return executor.ExecuteSharded(snap, q, filter, e.shards, e.pool)
	}
	return executor.Execute(snap, q, filter)
}

func (e *Engine) observe(mode, query string, fields []string, scanned, results int, elapsed time.Duration) {
	e.metrics.ObserveSearch(mode, results, elapsed)
	e.logger.Debug("search executed",
		"mode", mode,
		"query", query,
		"fields", fields,
		"scanned", scanned,
		"results", results,
		"latency", elapsed,
	)
}

// AddDocument indexes doc and appends it, returning its position.
func (e *Engine) AddDocument(doc document.Document) (int, error) {
	idx, err := e.indexer.Build(doc)
	if err != nil {
		e.metrics.DocumentRejected()
		return -1, err
	}
	pos := e.store.Append(doc, idx)
	e.metrics.DocumentIndexed(doc.Kind().String(), pos+1)
	e.logger.Debug("document added", "position", pos, "kind", doc.Kind().String())
	return pos, nil
}

// Documents returns the stored documents in position order. A result's
// Position indexes into it.
func (e *Engine) Documents() []document.Document {
	return e.store.Documents()
}

// Document returns the document at position p.
func (e *Engine) Document(p int) (document.Document, bool) {
	return e.store.Document(p)
}

// Len returns the number of stored documents.
func (e *Engine) Len() int {
	return e.store.Len()
}

// Generation changes whenever a search for the same query could return a
// different answer: on every addition and every stop-word change. It is
// prefixed with an ID unique to this engine, so engines sharing a result
// cache never read each other's entries.
func (e *Engine) Generation() string {
	return fmt.Sprintf("%s.%d.%d", e.id, e.store.Len(), e.stop.Version())
}

// Fields lists the field names of the first record document, in record
// order. It is empty when the store holds no records.
func (e *Engine) Fields() []string {
	for _, doc := range e.store.Snapshot().Documents {
		if doc.Kind() != document.KindRecord {
			continue
		}
		fields := doc.Fields()
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
		return names
	}
	return []string{}
}
