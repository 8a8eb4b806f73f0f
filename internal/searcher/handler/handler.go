// Package handler serves searches and read-only views of the engine over
// HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/middleware"
)

// Search modes accepted by the mode parameter.
const (
	ModeImmediate = "immediate"
	ModeDeferred  = "deferred"
)

// Engine is the part of the search engine the handler serves.
type Engine interface {
	SearchImmediate(query string, fields ...string) []ranker.Result
	SearchDeferred(query string, fields ...string) *executor.Pending
	Document(p int) (document.Document, bool)
	Documents() []document.Document
	Fields() []string
	Generation() string
	StopWords() *tokenizer.StopWords
	Len() int
}

// Hit is one result with its document resolved. Field is set iff the match
// came from a record field, including a field with an empty name.
type Hit struct {
	Position int               `json:"document_position"`
	Score    float64           `json:"score"`
	Field    *string           `json:"field_key,omitempty"`
	Document document.Document `json:"document"`
}

func newHit(res ranker.Result, doc document.Document) Hit {
	hit := Hit{Position: res.Position, Score: res.Score, Document: doc}
	if res.HasField {
		field := res.Field
		hit.Field = &field
	}
	return hit
}

// SearchResponse is the body of a successful search.
type SearchResponse struct {
	RequestID string   `json:"request_id,omitempty"`
	Query     string   `json:"query"`
	Fields    []string `json:"fields,omitempty"`
	Mode      string   `json:"mode"`
	TotalHits int      `json:"total_hits"`
	CacheHit  bool     `json:"cache_hit"`
	TookMs    int64    `json:"took_ms"`
	Results   []Hit    `json:"results"`
}

// Handler serves the search API.
type Handler struct {
	engine       Engine
	cache        *cache.QueryCache
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. queryCache may be nil. A limit of 0 means every
// match is returned.
func New(engine Engine, queryCache *cache.QueryCache, defaultLimit, maxResults int) *Handler {
	return &Handler{
		engine:       engine,
		cache:        queryCache,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=&field=&mode=&limit=. The field
// parameter may repeat; without it every field of a record is searched.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)
	params := r.URL.Query()

	if !params.Has("q") {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	query := params.Get("q")
	fields := params["field"]

	mode := params.Get("mode")
	if mode == "" {
		mode = ModeImmediate
	}
	if mode != ModeImmediate && mode != ModeDeferred {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("mode must be %q or %q", ModeImmediate, ModeDeferred))
		return
	}

	limit, err := h.parseLimit(params.Get("limit"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	compute := func(ctx context.Context) ([]ranker.Result, error) {
		if mode == ModeDeferred {
			return h.engine.SearchDeferred(query, fields...).Wait(ctx)
		}
		return h.engine.SearchImmediate(query, fields...), nil
	}

	var results []ranker.Result
	cacheHit := false
	if h.cache != nil {
		key := cache.Key{Query: query, Fields: fields, Generation: h.engine.Generation()}
		results, cacheHit, err = h.cache.GetOrCompute(ctx, key, compute)
	} else {
		results, err = compute(ctx)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			err = fmt.Errorf("%w: %w", apperrors.ErrTimeout, err)
		}
		status := apperrors.HTTPStatusCode(err)
		log.Error("search failed", "query", query, "mode", mode, "error", err, "status_code", status)
		h.writeError(w, status, "search failed")
		return
	}

	total := len(results)
	results = ranker.Limit(results, limit)
	hits := make([]Hit, 0, len(results))
	for _, res := range results {
		doc, ok := h.engine.Document(res.Position)
		if !ok {
			log.Error("result position out of range", "position", res.Position)
			continue
		}
		hits = append(hits, newHit(res, doc))
	}

	took := time.Since(start)
	log.Info("search completed",
		"query", query,
		"fields", fields,
		"mode", mode,
		"total_hits", total,
		"returned", len(hits),
		"cache_hit", cacheHit,
		"latency_ms", took.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, SearchResponse{
		RequestID: middleware.GetRequestID(ctx),
		Query:     query,
		Fields:    fields,
		Mode:      mode,
		TotalHits: total,
		CacheHit:  cacheHit,
		TookMs:    took.Milliseconds(),
		Results:   hits,
	})
}

func (h *Handler) parseLimit(raw string) (int, error) {
	limit := h.defaultLimit
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return 0, errors.New("limit must be a non-negative integer")
		}
		limit = parsed
	}
	if h.maxResults > 0 && (limit == 0 || limit > h.maxResults) {
		limit = h.maxResults
	}
	return limit, nil
}

// Documents handles GET /api/v1/documents.
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	docs := h.engine.Documents()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(docs),
		"documents": docs,
	})
}

// Document handles GET /api/v1/documents/{position}.
func (h *Handler) Document(w http.ResponseWriter, r *http.Request) {
	pos, err := strconv.Atoi(r.PathValue("position"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "position must be an integer")
		return
	}
	doc, ok := h.engine.Document(pos)
	if !ok {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("no document at position %d", pos))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"document_position": pos,
		"document":          doc,
	})
}

// Fields handles GET /api/v1/fields.
func (h *Handler) Fields(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"fields": h.engine.Fields()})
}

// StopWords handles GET /api/v1/stopwords.
func (h *Handler) StopWords(w http.ResponseWriter, r *http.Request) {
	words := h.engine.StopWords().Words()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(words),
		"stop_words": words,
	})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":       hits,
		"misses":     misses,
		"total":      total,
		"hit_rate":   fmt.Sprintf("%.1f%%", hitRate),
		"breaker":    h.cache.BreakerState().String(),
		"generation": h.engine.Generation(),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
