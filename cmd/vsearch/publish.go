package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/kafka"
)

type eventProducer interface {
	publisher.EventPublisher
	Close() error
}

// newProducer is replaced in tests.
var newProducer = func(cfg config.KafkaConfig, topic string) eventProducer {
	return kafka.NewProducer(cfg, topic)
}

type publishOptions struct {
	configPath string
	brokers    []string
	topic      string
	source     string
}

func newPublishCmd(_ *rootOptions) *cobra.Command {
	opts := &publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish <documents-file>",
		Short: "Publish the documents of a file to the ingest topic",
		Long: `Validate every document of a file, then publish one ingest event per
document. Running searchers consuming the topic append them in file order.

Examples:
  vsearch publish posts.json --brokers localhost:9092
  vsearch publish posts.yaml --config searcher.yaml --source nightly-import`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "searcher config file to read Kafka settings from")
	cmd.Flags().StringSliceVar(&opts.brokers, "brokers", nil, "Kafka brokers, overriding the config")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "ingest topic, overriding the config")
	cmd.Flags().StringVar(&opts.source, "source", "", "event source and partition key (default: file name)")
	return cmd
}

func runPublish(cmd *cobra.Command, opts *publishOptions, path string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if len(opts.brokers) > 0 {
		cfg.Kafka.Brokers = opts.brokers
	}
	topic := cfg.Kafka.Topics.DocumentIngest
	if opts.topic != "" {
		topic = opts.topic
	}
	src := opts.source
	if src == "" {
		src = filepath.Base(path)
	}

	docs, err := source.File{Path: path}.Load(cmd.Context())
	if err != nil {
		return err
	}
	producer := newProducer(cfg.Kafka, topic)
	defer producer.Close()

	n, err := publisher.New(producer).Publish(cmd.Context(), src, docs)
	if err != nil {
		return fmt.Errorf("published %d of %d documents: %w", n, len(docs), err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "published %d documents to %s\n", n, topic)
	return err
}
