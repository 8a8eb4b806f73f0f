// Package router wires every HTTP route of the search service and applies
// the middleware chain.
package router

import (
	"net/http"
	"time"

	ingesthandler "github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/vectorspace-search/pkg/middleware"
)

// Deps are the handlers and cross-cutting pieces the router wires. Metrics,
// Limiter and CORSOrigins are optional.
type Deps struct {
	Search      *handler.Handler
	Ingest      *ingesthandler.Handler
	Health      *health.Checker
	Metrics     *metrics.Metrics
	Limiter     *middleware.Limiter
	CORSOrigins []string
	Timeout     time.Duration
}

// New builds the service handler.
//
// Route table:
//
//	GET    /api/v1/search                 rank documents against q
//	GET    /api/v1/documents              every stored document
//	GET    /api/v1/documents/{position}   one stored document
//	POST   /api/v1/documents              append a document (rate limited)
//	GET    /api/v1/fields                 field names of the first record
//	GET    /api/v1/stopwords              current stop words
//	GET    /api/v1/cache/stats            result cache counters
//	POST   /api/v1/cache/invalidate       drop cached results
//	GET    /health/live, /health/ready    probes
//
// Middleware chain (outermost first):
//
//	RequestID → CORS → Timeout → Metrics → mux
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health/live", d.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", d.Health.ReadyHandler())

	mux.HandleFunc("GET /api/v1/search", d.Search.Search)
	mux.HandleFunc("GET /api/v1/documents", d.Search.Documents)
	mux.HandleFunc("GET /api/v1/documents/{position}", d.Search.Document)
	mux.Handle("POST /api/v1/documents", middleware.RateLimit(d.Limiter)(http.HandlerFunc(d.Ingest.Ingest)))
	mux.HandleFunc("GET /api/v1/fields", d.Search.Fields)
	mux.HandleFunc("GET /api/v1/stopwords", d.Search.StopWords)

	mux.HandleFunc("GET /api/v1/cache/stats", d.Search.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", d.Search.CacheInvalidate)

	var chain http.Handler = mux
	chain = middleware.Metrics(d.Metrics)(chain)
	if d.Timeout > 0 {
		chain = middleware.Timeout(d.Timeout)(chain)
	}
	chain = middleware.CORS(middleware.NewCORSConfig(d.CORSOrigins...))(chain)
	chain = middleware.RequestID(chain)
	return chain
}
