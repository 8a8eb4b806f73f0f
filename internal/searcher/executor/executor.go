// Package executor scores a query vector against a store snapshot.
package executor

import (
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/vector"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
)

// Filter restricts which record fields are scored. The zero Filter allows
// every field.
type Filter struct {
	fields map[string]struct{}
}

// NewFilter returns a Filter allowing only names. No names means no
// restriction.
func NewFilter(names ...string) Filter {
	if len(names) == 0 {
		return Filter{}
	}
	f := Filter{fields: make(map[string]struct{}, len(names))}
	for _, n := range names {
		f.fields[n] = struct{}{}
	}
	return f
}

// Allows reports whether field name is scored.
func (f Filter) Allows(name string) bool {
	if len(f.fields) == 0 {
		return true
	}
	_, ok := f.fields[name]
	return ok
}

// Restricted reports whether the filter names any field.
func (f Filter) Restricted() bool {
	return len(f.fields) > 0
}

// Execute scores every document of snap against query and returns the
// matches with a positive score, best first. Equal scores keep document
// order, and for a record, field order.
func Execute(snap store.Snapshot, query *vector.Vector, filter Filter) []ranker.Result {
	results := scan(snap.Indexes, 0, query, filter)
	ranker.Sort(results)
	return results
}

// scan scores idxs, whose first element sits at position base, and returns
// the positive matches in position order.
func scan(idxs []index.Index, base int, query *vector.Vector, filter Filter) []ranker.Result {
	results := make([]ranker.Result, 0)
	if query.Empty() {
		return results
	}
	for i, idx := range idxs {
		if v, ok := idx.Vector(); ok {
			if score := ranker.Relation(v, query); score > 0 {
				results = append(results, ranker.Result{Position: base + i, Score: score})
			}
			continue
		}
		fi, ok := idx.FieldIndex()
		if !ok {
			continue
		}
		for _, fv := range fi.Fields() {
			if !filter.Allows(fv.Name) {
				continue
			}
			if score := ranker.Relation(fv.Vector, query); score > 0 {
				results = append(results, ranker.Result{
					Position: base + i,
					Score:    score,
					Field:    fv.Name,
					HasField: true,
				})
			}
		}
	}
	return results
}
