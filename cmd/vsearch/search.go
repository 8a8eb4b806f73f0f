package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/ranker"
)

const previewWidth = 72

type searchOptions struct {
	fields   []string
	limit    int
	deferred bool
	shards   int
	asJSON   bool
	timeout  time.Duration
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search <documents-file> <query>",
		Short: "Rank the documents of a file against a query",
		Long: `Rank the documents of a file against a query, best match first.

Examples:
  # Search every document
  vsearch search posts.json "breaking news"

  # Only look at two fields of record documents
  vsearch search posts.json news --field title --field body

  # Machine-readable output
  vsearch search posts.yaml cat --json --limit 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, root, opts, args[0], args[1])
		},
	}
	cmd.Flags().StringArrayVarP(&opts.fields, "field", "f", nil, "restrict record documents to this field (repeatable)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum number of results, 0 for all")
	cmd.Flags().BoolVar(&opts.deferred, "deferred", false, "prepare the search and resolve it separately")
	cmd.Flags().IntVar(&opts.shards, "shards", 1, "partitions to score in parallel")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "how long to wait for a deferred search")
	return cmd
}

type jsonHit struct {
	Rank     int               `json:"rank"`
	Position int               `json:"document_position"`
	Score    float64           `json:"score"`
	Field    *string           `json:"field_key,omitempty"`
	Document document.Document `json:"document"`
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions, path, query string) error {
	if opts.limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	stop, err := root.stopWords()
	if err != nil {
		return err
	}
	docs, err := source.File{Path: path}.Load(cmd.Context())
	if err != nil {
		return err
	}
	engine, err := indexer.NewEngine(docs, indexer.WithStopWords(stop), indexer.WithShards(opts.shards))
	if err != nil {
		return err
	}
	defer engine.Close()

	var results []ranker.Result
	if opts.deferred {
		ctx := cmd.Context()
		if opts.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.timeout)
			defer cancel()
		}
		results, err = engine.SearchDeferred(query, opts.fields...).Wait(ctx)
		if err != nil {
			return err
		}
	} else {
		results = engine.SearchImmediate(query, opts.fields...)
	}
	total := len(results)
	results = ranker.Limit(results, opts.limit)

	out := cmd.OutOrStdout()
	if opts.asJSON {
		hits := make([]jsonHit, len(results))
		for i, r := range results {
			doc, _ := engine.Document(r.Position)
			hits[i] = jsonHit{Rank: i + 1, Position: r.Position, Score: r.Score, Document: doc}
			if r.HasField {
				hits[i].Field = &results[i].Field
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"query": query, "total_hits": total, "results": hits})
	}
	return printResults(out, engine, results, total)
}

func printResults(out io.Writer, engine *indexer.Engine, results []ranker.Result, total int) error {
	if total == 0 {
		_, err := fmt.Fprintln(out, "no matches")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tPOSITION\tFIELD\tDOCUMENT")
	for i, r := range results {
		doc, _ := engine.Document(r.Position)
		field := "-"
		if r.HasField {
			field = r.Field
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%d\t%s\t%s\n", i+1, r.Score, r.Position, field, preview(doc))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d of %d matches\n", len(results), total)
	return err
}

func preview(doc document.Document) string {
	var text string
	if doc.Kind() == document.KindText {
		text = doc.Text()
	} else {
		data, err := json.Marshal(doc)
		if err != nil {
			return "?"
		}
		text = string(data)
	}
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > previewWidth {
		text = string(r[:previewWidth-3]) + "..."
	}
	return text
}
