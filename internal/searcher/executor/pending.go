package executor

import (
	"context"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
)

// Pending is a search whose scoring has been deferred. The query vector and
// the snapshot it scores are fixed when the Pending is created. Scoring runs
// exactly once, on the goroutine of the first Wait or Done; it is not handed
// to a worker, so deferring buys no speed over an immediate search.
type Pending struct {
	run     func() []ranker.Result
	once    sync.Once
	done    chan struct{}
	results []ranker.Result
}

// NewPending wraps run, which must not be called by anyone else.
func NewPending(run func() []ranker.Result) *Pending {
	return &Pending{run: run, done: make(chan struct{})}
}

// Done computes the results if no one has yet and returns a channel that is
// already closed, for use in select statements.
func (p *Pending) Done() <-chan struct{} {
	p.once.Do(p.compute)
	return p.done
}

func (p *Pending) compute() {
	defer close(p.done)
	p.results = p.run()
}

// Wait returns the results, computing them if no one has yet. An already
// cancelled ctx is reported before any work starts; a running computation
// is never interrupted, and callers arriving while it runs block until it
// finishes. Each caller gets its own copy.
func (p *Pending) Wait(ctx context.Context) ([]ranker.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.once.Do(p.compute)
	out := make([]ranker.Result, len(p.results))
	copy(out, p.results)
	return out, nil
}
