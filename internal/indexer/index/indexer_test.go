package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
)

func newTestIndexer() *Indexer {
	return NewIndexer(tokenizer.NewStopWords("the", "in", "on", ""), nil)
}

func TestBuildText(t *testing.T) {
	idx, err := newTestIndexer().Build(document.NewText("the cat sat on the mat"))
	require.NoError(t, err)

	v, ok := idx.Vector()
	require.True(t, ok)
	_, isComplex := idx.FieldIndex()
	assert.False(t, isComplex)

	assert.Equal(t, []string{"cat", "sat", "mat"}, v.Concordance.Terms())
	assert.InDelta(t, 1.7320508, v.Magnitude, 1e-6)
}

func TestBuildRecordKeepsFieldOrder(t *testing.T) {
	doc := document.NewRecord(
		document.F("title", document.TextValue("Breaking News")),
		document.F("body", document.TextValue("Big story")),
		document.F("views", document.NumberValue(12)),
		document.F("empty", document.TextValue("")),
	)
	idx, err := newTestIndexer().Build(doc)
	require.NoError(t, err)

	fi, ok := idx.FieldIndex()
	require.True(t, ok)
	_, isSimple := idx.Vector()
	assert.False(t, isSimple)

	names := make([]string, 0, fi.Len())
	for _, f := range fi.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"title", "body", "views", "empty"}, names)

	title, _ := fi.Get("title")
	assert.Equal(t, []string{"breaking", "news"}, title.Concordance.Terms())

	views, _ := fi.Get("views")
	assert.Equal(t, 1, views.Concordance.Count("12"))

	empty, _ := fi.Get("empty")
	assert.True(t, empty.Empty())
	assert.Zero(t, empty.Magnitude)
}

func TestBuildRecordUnrepresentableValues(t *testing.T) {
	ix := newTestIndexer()
	var seen []string
	ix.OnUnrepresentable(func(field string, kind document.ValueKind) {
		seen = append(seen, field+":"+kind.String())
	})

	doc := document.NewRecord(
		document.F("meta", document.UnsupportedValue()),
		document.F("medias", document.SequenceValue(
			document.TextValue("a.png"),
			document.UnsupportedValue(),
			document.TextValue("b.png"),
		)),
	)
	idx, err := ix.Build(doc)
	require.NoError(t, err)

	fi, _ := idx.FieldIndex()
	meta, _ := fi.Get("meta")
	assert.True(t, meta.Empty())

	medias, _ := fi.Get("medias")
	assert.Equal(t, []string{"a", "png", "b"}, medias.Concordance.Terms())
	assert.Equal(t, 2, medias.Concordance.Count("png"))

	assert.Equal(t, []string{"meta:unsupported", "medias:sequence"}, seen)
}

func TestBuildRejectsInvalidDocuments(t *testing.T) {
	ix := newTestIndexer()

	_, err := ix.Build(document.Document{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDocument)

	_, err = ix.Build(document.NewRecord(
		document.F("a", document.TextValue("x")),
		document.F("a", document.TextValue("y")),
	))
	assert.ErrorIs(t, err, apperrors.ErrInvalidDocument)
}

func TestBuildUsesCurrentStopWords(t *testing.T) {
	stop := tokenizer.NewStopWords("")
	ix := NewIndexer(stop, nil)

	before, err := ix.Build(document.NewText("hello world"))
	require.NoError(t, err)
	stop.Add("hello")
	after, err := ix.Build(document.NewText("hello world"))
	require.NoError(t, err)

	bv, _ := before.Vector()
	av, _ := after.Vector()
	assert.Equal(t, 1, bv.Concordance.Count("hello"))
	assert.Equal(t, 0, av.Concordance.Count("hello"))
}
