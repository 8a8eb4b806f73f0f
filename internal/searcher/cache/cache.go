// Package cache stores search results in Redis. Keys include the engine
// generation, so any addition or stop-word change makes old entries
// unreachable and they expire on their own.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/resilience"
)

const keyPrefix = "vsearch:"

// Backend is the subset of the Redis client the cache needs.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Key identifies one search. Fields are treated as a set.
type Key struct {
	Query      string
	Fields     []string
	Generation string
}

func (k Key) String() string {
	fields := slices.Clone(k.Fields)
	slices.Sort(fields)
	fields = slices.Compact(fields)
	raw := fmt.Sprintf("%s\x00%s\x00%s", k.Generation, strings.Join(fields, "\x1f"), k.Query)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// entry is the stored form of a result. Field is a pointer so that a field
// named "" survives the round trip.
type entry struct {
	Position int     `json:"p"`
	Score    float64 `json:"s"`
	Field    *string `json:"f,omitempty"`
}

// QueryCache is a read-through result cache. Backend failures are logged
// and counted as misses; they never fail a search.
type QueryCache struct {
	backend Backend
	cfg     config.RedisConfig
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	group   singleflight.Group
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New returns a cache over backend. m may be nil.
func New(backend Backend, cfg config.RedisConfig, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		backend: backend,
		cfg:     cfg,
		metrics: m,
		breaker: resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
			OnStateChange: func(name string, to resilience.State) {
				m.SetBreakerState(name, int(to))
			},
		}),
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached results for key.
func (c *QueryCache) Get(ctx context.Context, key Key) ([]ranker.Result, bool) {
	k := key.String()
	var data []byte
	err := c.call(ctx, "cache-get", func(ctx context.Context) error {
		var err error
		data, err = c.backend.Get(ctx, k)
		if pkgredis.IsNilError(err) {
			data = nil
			return nil
		}
		return err
	})
	if err != nil {
		c.logger.Warn("cache get failed", "key", k, "error", err)
		c.miss()
		return nil, false
	}
	if data == nil {
		c.miss()
		return nil, false
	}
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Error("cache unmarshal failed", "key", k, "error", err)
		c.miss()
		return nil, false
	}
	results := make([]ranker.Result, len(entries))
	for i, e := range entries {
		results[i] = ranker.Result{Position: e.Position, Score: e.Score}
		if e.Field != nil {
			results[i].Field, results[i].HasField = *e.Field, true
		}
	}
	c.hits.Add(1)
	c.metrics.CacheLookup(true)
	c.logger.Debug("cache hit", "query", key.Query, "key", k)
	return results, true
}

// Set stores results under key with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, key Key, results []ranker.Result) {
	k := key.String()
	entries := make([]entry, len(results))
	for i, r := range results {
		entries[i] = entry{Position: r.Position, Score: r.Score}
		if r.HasField {
			entries[i].Field = &r.Field
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", k, "error", err)
		return
	}
	err = c.call(ctx, "cache-set", func(ctx context.Context) error {
		return c.backend.Set(ctx, k, data, c.cfg.CacheTTL)
	})
	if err != nil {
		c.logger.Warn("cache set failed", "key", k, "error", err)
	}
}

// GetOrCompute returns cached results for key or runs compute, collapsing
// concurrent misses for the same key into one computation. The bool reports
// a cache hit.
func (c *QueryCache) GetOrCompute(ctx context.Context, key Key, compute func(ctx context.Context) ([]ranker.Result, error)) ([]ranker.Result, bool, error) {
	if results, ok := c.Get(ctx, key); ok {
		return results, true, nil
	}
	val, err, _ := c.group.Do(key.String(), func() (any, error) {
		results, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(ctx, key, results)
		return results, nil
	})
	if err != nil {
		return nil, false, err
	}
	return slices.Clone(val.([]ranker.Result)), false, nil
}

// Invalidate drops every cached search.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

// Stats returns the hit and miss counts since start.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports the state of the circuit guarding the backend.
func (c *QueryCache) BreakerState() resilience.State {
	return c.breaker.GetState()
}

func (c *QueryCache) call(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return c.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, c.cfg.OpTimeout, name, fn)
	})
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	c.metrics.CacheLookup(false)
}
