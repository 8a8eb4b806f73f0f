package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/kafka"
)

const posts = `[
  {"title": "Breaking News", "body": "Big story"},
  "news of the day",
  "the cat sat on the mat"
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSearchTable(t *testing.T) {
	docs := writeFile(t, "posts.json", posts)
	stop := writeFile(t, "stop.txt", "the\nof\non\n")

	out, err := execute(t, "search", docs, "news", "--stopwords", stop, "--replace-stopwords")
	require.NoError(t, err)
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "news of the day")
	assert.Contains(t, out, "2 of 2 matches")

	out, err = execute(t, "search", docs, "zebra")
	require.NoError(t, err)
	assert.Equal(t, "no matches\n", out)
}

func TestSearchJSONWithFieldAndLimit(t *testing.T) {
	docs := writeFile(t, "posts.json", posts)

	out, err := execute(t, "search", docs, "story", "--field", "body", "--json", "--deferred")
	require.NoError(t, err)

	var resp struct {
		TotalHits int `json:"total_hits"`
		Results   []struct {
			Rank     int     `json:"rank"`
			Position int     `json:"document_position"`
			Field    *string `json:"field_key"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, 1, resp.TotalHits)
	require.NotNil(t, resp.Results[0].Field)
	assert.Equal(t, "body", *resp.Results[0].Field)
	assert.Equal(t, 0, resp.Results[0].Position)

	out, err = execute(t, "search", docs, "news", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 of 2 matches")
}

func TestSearchErrors(t *testing.T) {
	_, err := execute(t, "search", filepath.Join(t.TempDir(), "missing.json"), "x")
	assert.Error(t, err)

	_, err = execute(t, "search", writeFile(t, "bad.json", `[42]`), "x")
	assert.Error(t, err)

	_, err = execute(t, "search", writeFile(t, "ok.json", posts), "x", "--limit", "-1")
	assert.Error(t, err)
}

func TestStopWords(t *testing.T) {
	stop := writeFile(t, "stop.txt", "beta\nalpha\n")

	out, err := execute(t, "stopwords", "--stopwords", stop, "--replace-stopwords")
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", out)

	out, err = execute(t, "stopwords", "--count")
	require.NoError(t, err)
	assert.NotEqual(t, "0\n", out)

	out, err = execute(t, "stopwords")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\"\"\n"))
}

type fakeProducer struct {
	mu     sync.Mutex
	topic  string
	events []kafka.Event
	closed bool
}

func (f *fakeProducer) PublishBatch(_ context.Context, events []kafka.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	fake := &fakeProducer{}
	orig := newProducer
	newProducer = func(_ config.KafkaConfig, topic string) eventProducer {
		fake.topic = topic
		return fake
	}
	t.Cleanup(func() { newProducer = orig })

	docs := writeFile(t, "posts.json", posts)
	out, err := execute(t, "publish", docs, "--topic", "custom-ingest")
	require.NoError(t, err)
	assert.Equal(t, "published 3 documents to custom-ingest\n", out)
	assert.True(t, fake.closed)
	require.Len(t, fake.events, 3)
	for _, ev := range fake.events {
		assert.Equal(t, "posts.json", ev.Key)
		event, ok := ev.Value.(ingestion.IngestEvent)
		require.True(t, ok)
		assert.NotEmpty(t, event.EventID)
	}
}
