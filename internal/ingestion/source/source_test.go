package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/resilience"
)

func TestFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(`["first", {"title": "second"}]`), 0o644))

	docs, err := File{Path: path}.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, document.KindText, docs[0].Kind())
	assert.Equal(t, document.KindRecord, docs[1].Kind())

	_, err = File{Path: filepath.Join(t.TempDir(), "missing.json")}.Load(context.Background())
	assert.Error(t, err)
}

func fastRetry(p *Postgres) *Postgres {
	p.retry = resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}
	return p
}

func TestPostgresLoadRetriesTransientErrors(t *testing.T) {
	attempts := 0
	p := fastRetry(NewPostgresFunc(func(context.Context) ([][]byte, error) {
		attempts++
		if attempts < 2 {
			return nil, errors.New("connection reset")
		}
		return [][]byte{[]byte(`"alpha"`), []byte(`{"title": "beta", "likes": 2}`)}, nil
	}))

	docs, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	require.Len(t, docs, 2)
	assert.Equal(t, "alpha", docs[0].Text())
	likes, ok := docs[1].Field("likes")
	require.True(t, ok)
	assert.Equal(t, 2.0, likes.Number())
}

func TestPostgresLoadRejectsInvalidRow(t *testing.T) {
	attempts := 0
	p := fastRetry(NewPostgresFunc(func(context.Context) ([][]byte, error) {
		attempts++
		return [][]byte{[]byte(`"ok"`), []byte(`17`)}, nil
	}))

	_, err := p.Load(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInvalidDocument)
	assert.Contains(t, err.Error(), "row 1")
	assert.Equal(t, 1, attempts)
}

func TestPostgresLoadGivesUp(t *testing.T) {
	p := fastRetry(NewPostgresFunc(func(context.Context) ([][]byte, error) {
		return nil, errors.New("no route to host")
	}))
	_, err := p.Load(context.Background())
	assert.ErrorContains(t, err, "all 3 attempts failed")
}

func TestPostgresLoadKeepsFieldOrder(t *testing.T) {
	p := fastRetry(NewPostgresFunc(func(context.Context) ([][]byte, error) {
		return [][]byte{[]byte(`{"zeta": "z", "alpha": "a", "mid": "m"}`)}, nil
	}))

	docs, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	var names []string
	for _, f := range docs[0].Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}
