// Package store keeps the original documents and their indexes in two
// parallel, insertion-ordered, append-only lists.
package store

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/index"
)

// Store holds documents[i] alongside indexes[i]. Appends take the write
// lock; readers take a Snapshot and iterate it without holding any lock.
type Store struct {
	mu        sync.RWMutex
	documents []document.Document
	indexes   []index.Index
}

// New returns a Store with room for n documents.
func New(n int) *Store {
	return &Store{
		documents: make([]document.Document, 0, n),
		indexes:   make([]index.Index, 0, n),
	}
}

// Append adds doc and its index and returns the position they occupy.
func (s *Store) Append(doc document.Document, idx index.Index) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, doc)
	s.indexes = append(s.indexes, idx)
	return len(s.documents) - 1
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// Documents returns a copy of the stored documents in position order.
func (s *Store) Documents() []document.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]document.Document, len(s.documents))
	copy(out, s.documents)
	return out
}

// Document returns the document at position p.
func (s *Store) Document(p int) (document.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p < 0 || p >= len(s.documents) {
		return document.Document{}, false
	}
	return s.documents[p], true
}

// Snapshot is a fixed-length prefix of the store. Elements are never
// rewritten once appended, so a snapshot stays valid while appends continue.
type Snapshot struct {
	Documents []document.Document
	Indexes   []index.Index
}

// Len returns the number of documents in the snapshot.
func (sn Snapshot) Len() int {
	return len(sn.Indexes)
}

// Snapshot captures the current prefix of both lists.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.documents)
	return Snapshot{
		Documents: s.documents[:n:n],
		Indexes:   s.indexes[:n:n],
	}
}
