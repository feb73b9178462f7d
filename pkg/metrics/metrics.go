// Package metrics provides Prometheus instrumentation for simplify.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metric collectors for simplify.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	SentencesProcessed *prometheus.CounterVec
	WordsProcessed     *prometheus.CounterVec
	ReductionRatio     *prometheus.HistogramVec
	CacheLookups       *prometheus.CounterVec
	ActiveRequests     prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all simplify metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplify_requests_total",
				Help: "Total HTTP requests by endpoint and status code.",
			},
			[]string{"endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simplify_request_duration_seconds",
				Help:    "HTTP request latency distribution.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"endpoint"},
		),
		SentencesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplify_sentences_processed_total",
				Help: "Total sentences simplified by level.",
			},
			[]string{"level"},
		),
		WordsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplify_words_processed_total",
				Help: "Total words processed by direction (input/output).",
			},
			[]string{"direction"},
		),
		ReductionRatio: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "simplify_word_reduction_ratio",
				Help:    "Word reduction ratio per sentence (0=no reduction, 1=all removed).",
				Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
			},
			[]string{"level"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simplify_cache_lookups_total",
				Help: "Result cache lookups by outcome (hit/miss).",
			},
			[]string{"result"},
		),
		ActiveRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "simplify_active_requests",
				Help: "Number of requests currently being processed.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.SentencesProcessed,
		m.WordsProcessed,
		m.ReductionRatio,
		m.CacheLookups,
		m.ActiveRequests,
	)

	return m
}

// Handler returns an http.Handler that serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a completed request's metrics.
func (m *Metrics) RecordRequest(endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordSimplification records one simplified sentence.
func (m *Metrics) RecordSimplification(level, inputWords, outputWords int) {
	lvl := strconv.Itoa(level)
	m.SentencesProcessed.WithLabelValues(lvl).Inc()
	m.WordsProcessed.WithLabelValues("input").Add(float64(inputWords))
	m.WordsProcessed.WithLabelValues("output").Add(float64(outputWords))

	if inputWords > 0 {
		ratio := 1.0 - float64(outputWords)/float64(inputWords)
		m.ReductionRatio.WithLabelValues(lvl).Observe(ratio)
	}
}

// RecordCacheLookup counts a cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Middleware returns an HTTP middleware that instruments requests.
func (m *Metrics) Middleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.ActiveRequests.Inc()
		defer m.ActiveRequests.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rw, r)

		m.RecordRequest(endpoint, rw.statusCode, time.Since(start))
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers flush through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
