// Package tokenizer turns text into a concordance: the occurrence count of
// every lowercased word that is not a stop word. Words are split on a fixed
// punctuation class plus whitespace. There is no stemming and no unicode
// normalisation beyond lowercasing.
package tokenizer

import (
	"iter"
	"strings"
	"unicode"
)

// delimiters are the punctuation characters that separate words, in
// addition to whitespace.
const delimiters = ".,/#!$%^&*;:{}=-_`~()"

// Concordance maps each token to its occurrence count. Iteration follows
// the order in which tokens were first seen, so scoring and tie order are
// reproducible.
type Concordance struct {
	terms  []string
	counts map[string]int
}

// NewConcordance returns an empty Concordance.
func NewConcordance() *Concordance {
	return &Concordance{counts: make(map[string]int)}
}

// Add records one more occurrence of term.
func (c *Concordance) Add(term string) {
	if _, seen := c.counts[term]; !seen {
		c.terms = append(c.terms, term)
	}
	c.counts[term]++
}

// Count returns the number of occurrences of term.
func (c *Concordance) Count(term string) int {
	return c.counts[term]
}

// Len returns the number of distinct terms.
func (c *Concordance) Len() int {
	return len(c.terms)
}

// Terms returns the distinct terms in first-seen order.
func (c *Concordance) Terms() []string {
	out := make([]string, len(c.terms))
	copy(out, c.terms)
	return out
}

// All yields every (term, count) pair in first-seen order.
func (c *Concordance) All() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for _, term := range c.terms {
			if !yield(term, c.counts[term]) {
				return
			}
		}
	}
}

// Tokenize builds the concordance of text. Every substring between two
// delimiters is a candidate token, including the empty one; a candidate is
// dropped iff it is a member of stop at the time of the call. A nil stop
// uses the process-wide Default set.
func Tokenize(text string, stop *StopWords) *Concordance {
	if stop == nil {
		stop = Default()
	}
	conc := NewConcordance()
	stop.mu.RLock()
	defer stop.mu.RUnlock()

	text = strings.ToLower(text)
	start := 0
	for i, r := range text {
		if !isDelimiter(r) {
			continue
		}
		addToken(conc, stop, text[start:i])
		start = i + len(string(r))
	}
	addToken(conc, stop, text[start:])
	return conc
}

func addToken(conc *Concordance, stop *StopWords, word string) {
	if _, skip := stop.words[word]; skip {
		return
	}
	conc.Add(word)
}

// isDelimiter matches the punctuation class plus the ECMAScript white space
// and line terminator set: unicode.IsSpace with U+FEFF added and U+0085
// (NEL) removed.
func isDelimiter(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\ufeff' || strings.ContainsRune(delimiters, r)
}
