// Package index converts documents into the vectors the searcher scores:
// one vector for a text document, one vector per field for a record.
package index

import "github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/vector"

// Index is the indexed form of one document. Exactly one of the simple
// vector or the field index is set.
type Index struct {
	simple *vector.Vector
	fields *FieldIndex
}

// Simple wraps the vector of a text document.
func Simple(v *vector.Vector) Index {
	return Index{simple: v}
}

// Complex wraps the field index of a record document.
func Complex(f *FieldIndex) Index {
	return Index{fields: f}
}

// Vector returns the vector of a text document.
func (i Index) Vector() (*vector.Vector, bool) {
	return i.simple, i.simple != nil
}

// FieldIndex returns the per-field vectors of a record document.
func (i Index) FieldIndex() (*FieldIndex, bool) {
	return i.fields, i.fields != nil
}

// FieldVector is one entry of a FieldIndex.
type FieldVector struct {
	Name   string
	Vector *vector.Vector
}

// FieldIndex maps field names to vectors in record order.
type FieldIndex struct {
	entries []FieldVector
}

// NewFieldIndex returns an empty FieldIndex with room for n fields.
func NewFieldIndex(n int) *FieldIndex {
	return &FieldIndex{entries: make([]FieldVector, 0, n)}
}

// Set appends a field, or replaces it in place if the name already exists.
func (f *FieldIndex) Set(name string, v *vector.Vector) {
	for i := range f.entries {
		if f.entries[i].Name == name {
			f.entries[i].Vector = v
			return
		}
	}
	f.entries = append(f.entries, FieldVector{Name: name, Vector: v})
}

// Get returns the vector stored for name.
func (f *FieldIndex) Get(name string) (*vector.Vector, bool) {
	for _, e := range f.entries {
		if e.Name == name {
			return e.Vector, true
		}
	}
	return nil, false
}

// Fields returns the entries in record order. The slice is shared and must
// not be modified.
func (f *FieldIndex) Fields() []FieldVector {
	return f.entries
}

// Len returns the number of fields.
func (f *FieldIndex) Len() int {
	return len(f.entries)
}
