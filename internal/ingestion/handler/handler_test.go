package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion"
)

type fakeAdder struct {
	mu   sync.Mutex
	docs []document.Document
}

func (f *fakeAdder) AddDocument(doc document.Document) (int, error) {
	if err := doc.Validate(); err != nil {
		return -1, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	return len(f.docs) - 1, nil
}

func (f *fakeAdder) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func post(h *Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Ingest(rec, httptest.NewRequest(http.MethodPost, "/api/v1/documents", strings.NewReader(body)))
	return rec
}

func TestIngestAppendsDocument(t *testing.T) {
	adder := &fakeAdder{}
	h := New(adder, 1024)

	rec := post(h, `{"displayname": "Ada", "content": "first post"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp ingestion.IngestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Position)
	assert.Equal(t, 1, resp.Documents)
	assert.Equal(t, "indexed", resp.Status)

	rec = post(h, `"second"`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Position)
}

func TestIngestRejectsInvalid(t *testing.T) {
	adder := &fakeAdder{}
	h := New(adder, 32)

	for name, body := range map[string]string{
		"empty":     "",
		"number":    "12",
		"too large": `"` + strings.Repeat("x", 64) + `"`,
		"duplicate": `{"a": "x", "a": "y"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := post(h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
	assert.Equal(t, 0, adder.Len())
}
