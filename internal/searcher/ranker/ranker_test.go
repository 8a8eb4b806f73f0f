package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/vector"
)

var stop = tokenizer.NewStopWords("")

func vec(text string) *vector.Vector {
	return vector.FromText(text, stop)
}

func TestRelationIsDirectional(t *testing.T) {
	programming := vec("programming")
	program := vec("program")

	assert.InDelta(t, 1.0, Relation(programming, program), 1e-12)
	assert.Zero(t, Relation(program, programming))
}

func TestRelationScores(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		query     string
		want      float64
	}{
		{"exact single term", "cat", "cat", 1},
		{"no overlap", "cat dog", "xyz", 0},
		{"one of two terms", "cat dog", "cat", 1 / 1.4142135623730951},
		{"repeated candidate term", "cat cat dog", "cat", 2 / 2.23606797749979},
		{"substring hits several terms", "news newsletter", "new", 2 / 1.4142135623730951},
		{"query term matches twice", "catalog", "cat cat", 2 / 2.0},
		{"empty candidate", "", "cat", 0},
		{"empty query", "cat", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Relation(vec(tt.candidate), vec(tt.query)), 1e-9)
		})
	}
}

func TestSortIsStableDescending(t *testing.T) {
	results := []Result{
		{Position: 0, Score: 0.5},
		{Position: 1, Score: 0.9},
		{Position: 2, Score: 0.5, Field: "title", HasField: true},
		{Position: 3, Score: 0.9},
		{Position: 4, Score: 0.1},
	}
	Sort(results)

	positions := make([]int, len(results))
	for i, r := range results {
		positions[i] = r.Position
	}
	assert.Equal(t, []int{1, 3, 0, 2, 4}, positions)
}

func TestLimit(t *testing.T) {
	results := []Result{{Position: 0}, {Position: 1}, {Position: 2}}
	assert.Len(t, Limit(results, 0), 3)
	assert.Len(t, Limit(results, 2), 2)
	assert.Len(t, Limit(results, 10), 3)
}
