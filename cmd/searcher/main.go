// Command searcher serves the vector-space search engine over HTTP.
//
// The engine is built from a document file or a Postgres table, then kept
// current by POST /api/v1/documents and, when Kafka is enabled, by the
// document ingest topic. Results are cached in Redis when it is enabled.
//
// Usage:
//
//	go run ./cmd/searcher [-config searcher.yaml]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/indexer/tokenizer"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/source"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/router"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file; defaults and VS_* environment variables apply without one")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
	}
	checker := health.NewChecker(0)

	var pg *postgres.Client
	if cfg.Postgres.Enabled {
		var err error
		pg, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pg.Close()
		checker.Register("postgres", health.PingCheck(pg.Ping, health.StatusDegraded))
	}

	docs, err := loadDocuments(ctx, cfg, pg)
	if err != nil {
		return err
	}
	stopWords, err := tokenizer.FromFile(cfg.Engine.StopWordsFile, cfg.Engine.StopWordsMode == config.StopWordsReplace)
	if err != nil {
		return err
	}

	engine, err := indexer.NewEngine(docs,
		indexer.WithStopWords(stopWords),
		indexer.WithMetrics(m),
		indexer.WithShards(cfg.Engine.Shards),
	)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer engine.Close()
	slog.Info("engine ready",
		"documents", engine.Len(),
		"stop_words", stopWords.Len(),
		"shards", cfg.Engine.Shards,
	)
	checker.Register("engine", func(context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d documents, generation %s", engine.Len(), engine.Generation()),
		}
	})

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			checker.Register("redis", health.PingCheck(redisClient.Ping, health.StatusDegraded))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	h := handler.New(engine, queryCache, cfg.Engine.DefaultLimit, cfg.Engine.MaxResults)
	ingest := ingesthandler.New(engine, cfg.Engine.MaxDocumentBytes)

	var limiter *middleware.Limiter
	if cfg.Server.IngestRateLimit > 0 {
		limiter = middleware.NewLimiter(cfg.Server.IngestRateLimit, cfg.Server.IngestWindow)
	}
	routes := router.New(router.Deps{
		Search:      h,
		Ingest:      ingest,
		Health:      checker,
		Metrics:     m,
		Limiter:     limiter,
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.WriteTimeout,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("search service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down search service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if limiter != nil {
		g.Go(func() error {
			limiter.Run(gctx)
			return nil
		})
	}
	if m != nil {
		g.Go(func() error {
			return metrics.Serve(gctx, metrics.NewServer(cfg.Metrics.Port, m))
		})
	}
	if cfg.Kafka.Enabled {
		kc := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.DocumentIngest, consumer.HandleMessage(engine))
		g.Go(func() error {
			return consumer.New(kc).Start(gctx)
		})
		slog.Info("document ingest consumer started", "topic", cfg.Kafka.Topics.DocumentIngest)
	}
	return g.Wait()
}

func loadDocuments(ctx context.Context, cfg *config.Config, pg *postgres.Client) ([]document.Document, error) {
	var loader source.Loader
	switch {
	case pg != nil:
		loader = source.NewPostgres(pg, cfg.Postgres.DocumentsQuery)
	case cfg.Engine.DocumentsFile != "":
		loader = source.File{Path: cfg.Engine.DocumentsFile}
	default:
		slog.Info("no document source configured, starting empty")
		return nil, nil
	}
	return loader.Load(ctx)
}
