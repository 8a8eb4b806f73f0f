// Package vector pairs a concordance with its Euclidean magnitude.
package vector

import (
	"math"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
)

// Vector is a concordance and the norm of its counts. The magnitude is
// computed once at construction; the concordance must not be modified
// afterwards.
type Vector struct {
	Concordance *tokenizer.Concordance
	Magnitude   float64
}

// New wraps c, computing its magnitude. A nil c is treated as empty.
func New(c *tokenizer.Concordance) *Vector {
	if c == nil {
		c = tokenizer.NewConcordance()
	}
	return &Vector{
		Concordance: c,
		Magnitude:   Magnitude(c),
	}
}

// FromText tokenizes text with stop and wraps the result.
func FromText(text string, stop *tokenizer.StopWords) *Vector {
	return New(tokenizer.Tokenize(text, stop))
}

// Magnitude returns the square root of the sum of squared counts. It is 0
// iff c has no entries.
func Magnitude(c *tokenizer.Concordance) float64 {
	var total float64
	for _, count := range c.All() {
		total += float64(count) * float64(count)
	}
	return math.Sqrt(total)
}

// Empty reports whether the vector has no terms.
func (v *Vector) Empty() bool {
	return v.Concordance.Len() == 0
}
