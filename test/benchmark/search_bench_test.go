package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/vector"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
)

func corpus(n int) []document.Document {
	docs := make([]document.Document, n)
	for i := range docs {
		if i%3 == 0 {
			docs[i] = text(i)
		} else {
			docs[i] = record(i)
		}
	}
	return docs
}

func BenchmarkRelation(b *testing.B) {
	stop := tokenizer.Default()
	candidate := vector.FromText(sampleTexts["long"], stop)
	queries := map[string]string{
		"one_term":   "vector",
		"few_terms":  "stored query magnitude",
		"substrings": "tok count rel",
	}
	for name, q := range queries {
		query := vector.FromText(q, stop)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = ranker.Relation(candidate, query)
			}
		})
	}
}

func BenchmarkSearchImmediate(b *testing.B) {
	for _, n := range []int{1000, 10000} {
		e, err := indexer.NewEngine(corpus(n), indexer.WithLogger(quiet))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = e.SearchImmediate("algebraic weaves")
			}
		})
		b.Run(fmt.Sprintf("docs_%d_field", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = e.SearchImmediate("algebraic weaves", "text")
			}
		})
	}
}

func BenchmarkSearchSharded(b *testing.B) {
	docs := corpus(20000)
	for _, shards := range []int{1, 2, 4, 8} {
		e, err := indexer.NewEngine(docs, indexer.WithLogger(quiet), indexer.WithShards(shards))
		if err != nil {
			b.Fatal(err)
		}
		b.Cleanup(e.Close)
		b.Run(fmt.Sprintf("shards_%d", shards), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = e.SearchImmediate("vector loom")
			}
		})
	}
}

func BenchmarkSearchDeferred(b *testing.B) {
	e, err := indexer.NewEngine(corpus(1000), indexer.WithLogger(quiet))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.SearchDeferred("algebraic").Wait(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchParallel(b *testing.B) {
	e, err := indexer.NewEngine(corpus(5000), indexer.WithLogger(quiet))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = e.SearchImmediate("cosine relations")
		}
	})
}
