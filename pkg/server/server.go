// Package server exposes a Simplifier over HTTP.
//
// Routes:
//
//	POST /v1/simplify  - simplify one sentence
//	POST /v1/batch     - simplify many sentences (SSE when Accept: text/event-stream)
//	POST /v1/explain   - per-stage trace for one sentence
//	GET  /v1/levels    - configured compression levels
//	GET  /v1/rules     - active rule tables
//	GET  /health       - health check
//	GET  /metrics      - Prometheus metrics
package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Siddhant-K-code/simplify/pkg/batch"
	"github.com/Siddhant-K-code/simplify/pkg/cache"
	"github.com/Siddhant-K-code/simplify/pkg/logging"
	"github.com/Siddhant-K-code/simplify/pkg/metrics"
	"github.com/Siddhant-K-code/simplify/pkg/simplify"
	"github.com/Siddhant-K-code/simplify/pkg/telemetry"
)

// Config holds server behavior settings.
type Config struct {
	// APIKeys enables bearer-token auth on /v1 routes when non-empty.
	APIKeys []string

	// MaxBatchSize caps sentences per batch request (0 = unlimited).
	MaxBatchSize int

	// Workers sizes the batch worker pool.
	Workers int
}

// Server holds the API state.
type Server struct {
	simplifier *simplify.Simplifier
	memo       *cache.Memo
	runner     *batch.Runner
	metrics    *metrics.Metrics
	tracer     *telemetry.Provider
	logger     zerolog.Logger

	cfg       Config
	validKeys map[string]bool
	started   time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithCache memoizes results in c.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Server) {
		s.memo = cache.NewMemo(s.simplifier, c, cache.WithTTL(ttl), cache.WithLookupHook(func(hit bool) {
			if s.metrics != nil {
				s.metrics.RecordCacheLookup(hit)
			}
		}))
	}
}

// WithMetrics instruments routes and exposes /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTracer wraps requests in spans.
func WithTracer(p *telemetry.Provider) Option {
	return func(s *Server) { s.tracer = p }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server around simplifier.
func New(simplifier *simplify.Simplifier, cfg Config, opts ...Option) *Server {
	s := &Server{
		simplifier: simplifier,
		tracer:     telemetry.Noop(),
		logger:     zerolog.Nop(),
		cfg:        cfg,
		validKeys:  make(map[string]bool),
		started:    time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, key := range cfg.APIKeys {
		if key = strings.TrimSpace(key); key != "" {
			s.validKeys[key] = true
		}
	}

	var worker batch.Simplifier = simplifier
	if s.memo != nil {
		worker = s.memo
	}
	s.runner = batch.New(worker, batch.Config{Workers: cfg.Workers})

	return s
}

// HasAuth reports whether API keys are enforced.
func (s *Server) HasAuth() bool {
	return len(s.validKeys) > 0
}

// Handler returns the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/simplify", s.route("/v1/simplify", s.handleSimplify))
	mux.HandleFunc("POST /v1/batch", s.route("/v1/batch", s.handleBatch))
	mux.HandleFunc("POST /v1/explain", s.route("/v1/explain", s.handleExplain))
	mux.HandleFunc("GET /v1/levels", s.route("/v1/levels", s.handleLevels))
	mux.HandleFunc("GET /v1/rules", s.route("/v1/rules", s.handleRules))
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	mux.HandleFunc("GET /{$}", s.handleRoot)

	return corsMiddleware(s.requestIDMiddleware(mux))
}

// route applies auth, tracing and metrics to a /v1 handler.
func (s *Server) route(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	h := s.authMiddleware(s.traceMiddleware(endpoint, next))
	if s.metrics != nil {
		return s.metrics.Middleware(endpoint, h)
	}
	return h
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware propagates X-Request-ID, minting one when absent, and
// attaches a request-scoped logger to the context.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		logger := s.logger.With().Str("request_id", id).Logger()
		ctx := logging.WithRequestID(logger.WithContext(r.Context()), id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))

		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.HasAuth() {
			next(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "authorization header required")
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if !s.validKeys[token] {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		next(w, r)
	}
}

func (s *Server) traceMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.tracer.StartRequest(r.Context(), endpoint)
		defer span.End()
		next(w, r.WithContext(ctx))
	}
}
