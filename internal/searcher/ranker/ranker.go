package ranker

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/vector"
)

// Result is one scored match. Field is set iff the match came from a field
// of a record document.
type Result struct {
	Position int     `json:"document_position"`
	Score    float64 `json:"score"`
	Field    string  `json:"field_key,omitempty"`
	HasField bool    `json:"-"`
}

// Relation scores candidate against query. Every candidate term that
// contains a query term as a substring contributes the product of their
// counts; the sum is divided by the product of the magnitudes. The test is
// directional: a short query term matches inside a longer indexed term, not
// the other way round, so Relation(a, b) and Relation(b, a) may differ.
// Either vector being empty yields 0.
func Relation(candidate, query *vector.Vector) float64 {
	denom := candidate.Magnitude * query.Magnitude
	if denom <= 0 {
		return 0
	}
	var top float64
	for indexed, indexedCount := range candidate.Concordance.All() {
		for searched, searchedCount := range query.Concordance.All() {
			if strings.Contains(indexed, searched) {
				top += float64(indexedCount) * float64(searchedCount)
			}
		}
	}
	return top / denom
}

// Sort orders results by descending score. Equal scores keep their
// relative order.
func Sort(results []Result) {
	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
}

// Limit truncates results to at most n entries. n <= 0 means no limit.
func Limit(results []Result, n int) []Result {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}
