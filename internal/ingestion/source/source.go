// Package source loads the initial, ordered document batch an engine is
// built from: a JSON or YAML file, or a Postgres table.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/resilience"
)

// Loader produces documents in position order.
type Loader interface {
	Load(ctx context.Context) ([]document.Document, error)
}

// File loads a JSON or YAML array of documents from a path.
type File struct {
	Path string
}

// Load implements Loader.
func (f File) Load(_ context.Context) ([]document.Document, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading documents file %s: %w", f.Path, err)
	}
	docs, err := document.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("documents file %s: %w", f.Path, err)
	}
	return docs, nil
}

// QueryFunc returns the raw document bodies in position order.
type QueryFunc func(ctx context.Context) ([][]byte, error)

// Postgres loads documents from a single-column query whose rows hold one
// JSON document each, in the order the query returns them. Store bodies in a
// json (or text) column: jsonb reorders object keys, which changes the field
// order of records and with it the order of tied results.
type Postgres struct {
	query  QueryFunc
	retry  resilience.RetryConfig
	logger *slog.Logger
}

// NewPostgres reads with query inside a read-only transaction on client.
func NewPostgres(client *postgres.Client, query string) *Postgres {
	return NewPostgresFunc(func(ctx context.Context) ([][]byte, error) {
		var bodies [][]byte
		err := client.InTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
			rows, err := tx.QueryContext(ctx, query)
			if err != nil {
				return fmt.Errorf("querying documents: %w", err)
			}
			defer rows.Close()
			for rows.Next() {
				var body []byte
				if err := rows.Scan(&body); err != nil {
					return fmt.Errorf("scanning row %d: %w", len(bodies), err)
				}
				bodies = append(bodies, body)
			}
			return rows.Err()
		})
		return bodies, err
	})
}

// NewPostgresFunc builds a loader over an arbitrary query function.
func NewPostgresFunc(query QueryFunc) *Postgres {
	return &Postgres{
		query: query,
		retry: resilience.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
		},
		logger: slog.Default().With("component", "postgres-source"),
	}
}

// Load implements Loader. Connection and query failures are retried; a row
// that is not a valid document fails immediately.
func (p *Postgres) Load(ctx context.Context) ([]document.Document, error) {
	var bodies [][]byte
	start := time.Now()
	err := resilience.Retry(ctx, "load-documents", p.retry, func() error {
		var err error
		bodies, err = p.query(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	docs := make([]document.Document, 0, len(bodies))
	for i, body := range bodies {
		doc, err := document.DecodeOne(body)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	p.logger.Info("documents loaded", "count", len(docs), "duration", time.Since(start))
	return docs, nil
}
