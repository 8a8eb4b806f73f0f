// Package handler serves the document ingestion endpoint: a validated JSON
// or YAML document posted over HTTP is appended to the engine.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/logger"
)

// Handler appends posted documents to an engine.
type Handler struct {
	adder    ingestion.DocumentAdder
	maxBytes int
	logger   *slog.Logger
}

// New creates a Handler accepting bodies of at most maxBytes.
func New(adder ingestion.DocumentAdder, maxBytes int) *Handler {
	return &Handler{
		adder:    adder,
		maxBytes: maxBytes,
		logger:   slog.Default().With("component", "ingestion-handler"),
	}
}

// Ingest handles POST /api/v1/documents.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	body, err := io.ReadAll(io.LimitReader(r.Body, int64(h.maxBytes)+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "reading request body failed")
		return
	}
	doc, err := validator.DecodeDocument(body, h.maxBytes)
	if err != nil {
		var validationErr *validator.ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	pos, err := h.adder.AddDocument(doc)
	if err != nil {
		statusCode := apperrors.HTTPStatusCode(err)
		log.Error("ingestion failed",
			"error", err,
			"status_code", statusCode,
		)
		h.writeError(w, statusCode, "ingestion failed")
		return
	}
	log.Info("document ingested",
		"position", pos,
		"kind", doc.Kind().String(),
	)
	h.writeJSON(w, http.StatusCreated, ingestion.IngestResponse{
		Position:  pos,
		Status:    "indexed",
		Documents: h.adder.Len(),
	})
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
