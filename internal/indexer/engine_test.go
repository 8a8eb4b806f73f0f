package indexer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/metrics"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newEngine(t *testing.T, stop *tokenizer.StopWords, docs ...document.Document) *Engine {
	t.Helper()
	e, err := NewEngine(docs, WithStopWords(stop), WithLogger(quietLogger()))
	require.NoError(t, err)
	return e
}

func scenarioStop() *tokenizer.StopWords {
	return tokenizer.NewStopWords("the", "in", "on", "")
}

func TestScenarioTextDocuments(t *testing.T) {
	e := newEngine(t, scenarioStop(),
		document.NewText("the cat sat on the mat"),
		document.NewText("the dog ran in the yard"),
	)

	results := e.SearchImmediate("cat")
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Position)
	assert.Greater(t, results[0].Score, 0.0)

	assert.Empty(t, e.SearchImmediate("xyz"))
}

func TestScenarioFieldFilter(t *testing.T) {
	e := newEngine(t, scenarioStop(), document.NewRecord(
		document.F("title", document.TextValue("Breaking News")),
		document.F("body", document.TextValue("Big story")),
	))

	title := e.SearchImmediate("new", "title")
	require.Len(t, title, 1)
	assert.Equal(t, 0, title[0].Position)
	assert.Equal(t, "title", title[0].Field)
	assert.True(t, title[0].HasField)

	assert.Empty(t, e.SearchImmediate("new", "body"))
}

func TestScenarioTies(t *testing.T) {
	e := newEngine(t, tokenizer.NewStopWords(""),
		document.NewText("red green"),
		document.NewText("green red"),
		document.NewText("red green"),
	)

	results := e.SearchImmediate("red")
	require.Len(t, results, 3)
	assert.Equal(t, []int{0, 1, 2}, positions(results))
}

func TestImmediateEqualsDeferred(t *testing.T) {
	e := newEngine(t, tokenizer.NewStopWords(""),
		document.NewText("go is a programming language"),
		document.NewRecord(
			document.F("title", document.TextValue("Programs and programmers")),
			document.F("tags", document.SequenceValue(document.TextValue("go"), document.TextValue("program"))),
		),
		document.NewText("nothing relevant"),
	)

	for _, tc := range []struct {
		query  string
		fields []string
	}{
		{"program", nil},
		{"program", []string{"tags"}},
		{"go language", nil},
		{"", nil},
	} {
		want := e.SearchImmediate(tc.query, tc.fields...)
		got, err := e.SearchDeferred(tc.query, tc.fields...).Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got, "query %q", tc.query)
	}
}

func TestDeferredIgnoresLaterAdditions(t *testing.T) {
	e := newEngine(t, tokenizer.NewStopWords(""), document.NewText("alpha"))

	want := e.SearchImmediate("alpha")
	pending := e.SearchDeferred("alpha")
	_, err := e.AddDocument(document.NewText("alpha alpha"))
	require.NoError(t, err)

	got, err := pending.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, e.SearchImmediate("alpha"), 2)
}

func TestAddDocumentIsFindableAtLastPosition(t *testing.T) {
	e := newEngine(t, tokenizer.NewStopWords(""),
		document.NewText("first"),
		document.NewText("second"),
	)
	before := len(e.Documents())

	pos, err := e.AddDocument(document.NewText("zebra crossing"))
	require.NoError(t, err)

	docs := e.Documents()
	assert.Len(t, docs, before+1)
	assert.Equal(t, len(docs)-1, pos)

	results := e.SearchImmediate("zebra")
	require.Len(t, results, 1)
	assert.Equal(t, pos, results[0].Position)
	assert.Equal(t, "zebra crossing", docs[results[0].Position].Text())
}

func TestAddDocumentRejectsInvalid(t *testing.T) {
	e := newEngine(t, nil)

	_, err := e.AddDocument(document.Document{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDocument)

	_, err = e.AddDocument(document.NewRecord(
		document.F("a", document.TextValue("x")),
		document.F("a", document.TextValue("y")),
	))
	assert.ErrorIs(t, err, apperrors.ErrInvalidDocument)
	assert.Equal(t, 0, e.Len())
}

func TestNewEngineRejectsInvalid(t *testing.T) {
	_, err := NewEngine([]document.Document{document.NewText("ok"), {}}, WithLogger(quietLogger()))
	require.ErrorIs(t, err, apperrors.ErrInvalidDocument)
	assert.Contains(t, err.Error(), "document 1")
}

func TestEveryScoreIsPositive(t *testing.T) {
	e := newEngine(t, tokenizer.NewStopWords(""),
		document.NewText(""),
		document.NewText("..."),
		document.NewRecord(document.F("empty", document.UnsupportedValue())),
		document.NewText("match me"),
	)
	for _, q := range []string{"", "me", "m", "..."} {
		for _, r := range e.SearchImmediate(q) {
			assert.Greater(t, r.Score, 0.0, "query %q", q)
		}
	}
}

func TestGenerationIsUniquePerEngine(t *testing.T) {
	stop := tokenizer.NewStopWords("")
	a := newEngine(t, stop, document.NewText("cat"), document.NewText("dog"))
	b := newEngine(t, stop, document.NewText("dog"), document.NewText("bird"))

	assert.Equal(t, a.Generation(), a.Generation())
	assert.NotEqual(t, a.Generation(), b.Generation())
}

func TestStopWordChangesAreNotRetroactive(t *testing.T) {
	stop := tokenizer.NewStopWords("")
	e := newEngine(t, stop, document.NewText("hello world"))
	gen := e.Generation()

	stop.Add("hello")
	assert.NotEqual(t, gen, e.Generation())

	// The query now tokenizes to nothing, so nothing matches even though the
	// stored index still holds "hello".
	assert.Empty(t, e.SearchImmediate("hello"))

	stop.Remove("hello")
	assert.Len(t, e.SearchImmediate("hello"), 1)

	stop.Add("world")
	_, err := e.AddDocument(document.NewText("world peace"))
	require.NoError(t, err)
	assert.Len(t, e.SearchImmediate("peace"), 1)
	stop.Remove("world")
	results := e.SearchImmediate("world")
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Position)
}

func TestFields(t *testing.T) {
	e := newEngine(t, nil, document.NewText("plain"))
	assert.Empty(t, e.Fields())

	_, err := e.AddDocument(document.NewRecord(
		document.F("displayname", document.TextValue("Ada")),
		document.F("content", document.TextValue("hello")),
	))
	require.NoError(t, err)
	_, err = e.AddDocument(document.NewRecord(document.F("other", document.TextValue("x"))))
	require.NoError(t, err)

	assert.Equal(t, []string{"displayname", "content"}, e.Fields())
}

func TestShardedEngineMatchesSequential(t *testing.T) {
	docs := make([]document.Document, 0, 2048)
	for i := 0; i < 2048; i++ {
		docs = append(docs, document.NewText(fmt.Sprintf("doc %d tag%d", i, i%11)))
	}
	stop := tokenizer.NewStopWords("")
	seq, err := NewEngine(docs, WithStopWords(stop), WithLogger(quietLogger()))
	require.NoError(t, err)
	par, err := NewEngine(docs, WithStopWords(stop), WithLogger(quietLogger()), WithShards(4))
	require.NoError(t, err)

	for _, q := range []string{"tag1", "doc 7", "tag"} {
		assert.Equal(t, seq.SearchImmediate(q), par.SearchImmediate(q), "query %q", q)
	}

	par.Close()
	assert.Equal(t, seq.SearchImmediate("tag2"), par.SearchImmediate("tag2"))
}

func TestConcurrentAddAndSearch(t *testing.T) {
	e := newEngine(t, tokenizer.NewStopWords(""), document.NewText("seed"))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := e.AddDocument(document.NewText(fmt.Sprintf("writer%d item%d", w, i)))
				assert.NoError(t, err)
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				n := e.Len()
				for _, r := range e.SearchImmediate("item") {
					assert.Less(t, r.Position, len(e.Documents()))
				}
				assert.GreaterOrEqual(t, e.Len(), n)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 201, e.Len())
	assert.Len(t, e.SearchImmediate("item"), 200)
}

func TestEngineMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	e, err := NewEngine([]document.Document{
		document.NewRecord(document.F("reply", document.UnsupportedValue())),
	}, WithMetrics(m), WithLogger(quietLogger()), WithStopWords(tokenizer.NewStopWords("")))
	require.NoError(t, err)

	e.SearchImmediate("x")
	_, err = e.SearchDeferred("x").Wait(context.Background())
	require.NoError(t, err)
	_, err = e.AddDocument(document.Document{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `vectorspace_search_queries_total{mode="immediate",outcome="zero_result"} 1`)
	assert.Contains(t, body, `vectorspace_search_queries_total{mode="deferred",outcome="zero_result"} 1`)
	assert.Contains(t, body, `vectorspace_unrepresentable_field_values_total{kind="unsupported"} 1`)
	assert.Contains(t, body, "vectorspace_docs_rejected_total 1")
	assert.Contains(t, body, "vectorspace_store_documents 1")
}

func positions(results []ranker.Result) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Position
	}
	return out
}
