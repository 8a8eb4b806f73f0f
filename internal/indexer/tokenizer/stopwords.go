package tokenizer

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

//go:embed stopwords.txt
var defaultList string

// StopWords is a mutable set of tokens excluded from every concordance. It
// is safe for concurrent use. Changes only affect tokenization performed
// after them; indexes built earlier keep the tokens they were built with.
type StopWords struct {
	mu      sync.RWMutex
	words   map[string]struct{}
	version atomic.Uint64
}

// NewStopWords returns a set holding exactly words.
func NewStopWords(words ...string) *StopWords {
	s := &StopWords{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		s.words[w] = struct{}{}
	}
	return s
}

var (
	defaultOnce sync.Once
	defaultSet  *StopWords
)

// Default returns the process-wide stop-word set shared by every engine
// that is not given its own. It is initialised on first use from the
// embedded French and English word list plus the empty token, and is never
// reinitialised afterwards.
func Default() *StopWords {
	defaultOnce.Do(func() {
		defaultSet = NewStopWords(DefaultWords()...)
	})
	return defaultSet
}

// DefaultWords returns a fresh copy of the embedded word list, including
// the empty token.
func DefaultWords() []string {
	words := []string{""}
	for _, line := range strings.Split(defaultList, "\n") {
		if w := strings.TrimSpace(line); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Contains reports whether word is a stop word.
func (s *StopWords) Contains(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.words[word]
	return ok
}

// Add inserts words into the set.
func (s *StopWords) Add(words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		s.words[w] = struct{}{}
	}
	s.version.Add(1)
}

// Remove deletes words from the set.
func (s *StopWords) Remove(words ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range words {
		delete(s.words, w)
	}
	s.version.Add(1)
}

// Replace swaps the whole set for words.
func (s *StopWords) Replace(words ...string) {
	next := make(map[string]struct{}, len(words))
	for _, w := range words {
		next[w] = struct{}{}
	}
	s.mu.Lock()
	s.words = next
	s.mu.Unlock()
	s.version.Add(1)
}

// Len returns the number of stop words.
func (s *StopWords) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// Words returns the stop words sorted.
func (s *StopWords) Words() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Version increases on every mutation.
func (s *StopWords) Version() uint64 {
	return s.version.Load()
}

// LoadStopWords reads a stop-word file. A file whose content parses as a
// YAML (or JSON) list of strings is taken as such; anything else is read as
// one word per line. Blank lines are ignored; use a YAML list with "" to
// list the empty token explicitly.
func LoadStopWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stop words %s: %w", path, err)
	}
	var list []string
	if err := yaml.Unmarshal(data, &list); err == nil && list != nil {
		return list, nil
	}
	words := make([]string, 0, 256)
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning stop words %s: %w", path, err)
	}
	return words, nil
}

// FromFile builds a stop-word set from the file at path. With replace the
// file is the whole set; otherwise it extends the default list. An empty
// path yields the shared Default set.
func FromFile(path string, replace bool) (*StopWords, error) {
	if path == "" {
		return Default(), nil
	}
	words, err := LoadStopWords(path)
	if err != nil {
		return nil, err
	}
	if replace {
		return NewStopWords(words...), nil
	}
	return NewStopWords(append(DefaultWords(), words...)...), nil
}
