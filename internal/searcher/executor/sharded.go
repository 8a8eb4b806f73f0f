package executor

import (
	"sync"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/vector"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
)

// MinPartitionSize is the smallest number of documents worth handing to a
// separate goroutine.
const MinPartitionSize = 512

// Submitter runs tasks on a worker pool. *ants.Pool satisfies it.
type Submitter interface {
	Submit(task func()) error
}

// ExecuteSharded splits snap into up to shards contiguous partitions and
// scores them concurrently on pool. A partition the pool rejects, or every
// partition when pool is nil, gets its own goroutine. Partition results are
// joined in position order before the stable sort, so the output is
// identical to Execute.
func ExecuteSharded(snap store.Snapshot, query *vector.Vector, filter Filter, shards int, pool Submitter) []ranker.Result {
	n := snap.Len()
	if most := n / MinPartitionSize; shards > most {
		shards = most
	}
	if shards <= 1 {
		return Execute(snap, query, filter)
	}

	size := (n + shards - 1) / shards
	parts := make([][]ranker.Result, shards)
	var wg sync.WaitGroup
	for s := 0; s < shards; s++ {
		lo := s * size
		hi := min(lo+size, n)
		if lo >= hi {
			continue
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			parts[s] = scan(snap.Indexes[lo:hi], lo, query, filter)
		}
		if pool == nil || pool.Submit(task) != nil {
			go task()
		}
	}
	wg.Wait()

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	results := make([]ranker.Result, 0, total)
	for _, p := range parts {
		results = append(results, p...)
	}
	ranker.Sort(results)
	return results
}
