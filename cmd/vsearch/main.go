// Package main implements vsearch, a one-shot command line over a document
// file: search it, inspect the stop words, or publish it to the ingest
// topic.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/logger"
)

var version = "dev"

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	stopWordsFile    string
	replaceStopWords bool
	logLevel         string
}

func (o *rootOptions) stopWords() (*tokenizer.StopWords, error) {
	return tokenizer.FromFile(o.stopWordsFile, o.replaceStopWords)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "vsearch",
		Short: "Vector-space search over a document file",
		Long: `vsearch loads a JSON or YAML array of documents, indexes it in memory and
answers one command against it.

Documents are either strings or flat mappings of field names to values.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Setup(opts.logLevel, "text")
		},
	}
	cmd.PersistentFlags().StringVar(&opts.stopWordsFile, "stopwords", "", "stop-word file (one word per line, or a YAML list)")
	cmd.PersistentFlags().BoolVar(&opts.replaceStopWords, "replace-stopwords", false, "use the stop-word file instead of extending the default list")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newStopWordsCmd(opts))
	cmd.AddCommand(newPublishCmd(opts))
	return cmd
}
