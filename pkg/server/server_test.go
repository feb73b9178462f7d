package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Siddhant-K-code/simplify/pkg/cache"
	"github.com/Siddhant-K-code/simplify/pkg/metrics"
	"github.com/Siddhant-K-code/simplify/pkg/simplify"
)

func newTestServer(t *testing.T, cfg Config, opts ...Option) http.Handler {
	t.Helper()
	s, err := simplify.New(nil)
	require.NoError(t, err)
	return New(s, cfg, opts...).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestSimplify_DefaultLevel(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodPost, "/v1/simplify", `{"sentence":"the cat is on the mat"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SimplifyResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "the cat is on the mat", resp.Simplified)
	assert.Equal(t, 1, resp.Level)
	assert.Equal(t, "minimal", resp.Label)
	assert.Equal(t, 6, resp.Stats.InputWords)
	assert.Equal(t, 6, resp.Stats.OutputWords)
}

func TestSimplify_ExplicitLevel(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodPost, "/v1/simplify", `{"sentence":"The end result was an unexpected surprise","level":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SimplifyResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "result was surprise", resp.Simplified)
	assert.Equal(t, "aggressive", resp.Label)
}

func TestSimplify_BadRequests(t *testing.T) {
	h := newTestServer(t, Config{})

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"invalid level", `{"sentence":"x","level":9}`, "invalid level 9: choose between 1 and 4"},
		{"zero level", `{"sentence":"x","level":0}`, "invalid level 0"},
		{"bad json", `{"sentence":`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/simplify", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp errorResponse
			decodeBody(t, rec, &resp)
			assert.Contains(t, resp.Error, tt.message)
		})
	}
}

func TestSimplify_MethodNotAllowed(t *testing.T) {
	h := newTestServer(t, Config{})
	rec := do(t, h, http.MethodGet, "/v1/simplify", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSimplify_Cached(t *testing.T) {
	c := cache.NewMemoryCache(cache.DefaultConfig())
	t.Cleanup(func() { _ = c.Close() })
	m := metrics.New()

	h := newTestServer(t, Config{}, WithMetrics(m), WithCache(c, time.Minute))

	body := `{"sentence":"very tired cat","level":2}`
	var first, second SimplifyResponse
	decodeBody(t, do(t, h, http.MethodPost, "/v1/simplify", body), &first)
	decodeBody(t, do(t, h, http.MethodPost, "/v1/simplify", body), &second)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Simplified, second.Simplified)
	assert.Equal(t, int64(1), c.Stats().Hits)

	metricsBody := do(t, h, http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, metricsBody, `simplify_cache_lookups_total{result="hit"} 1`)
	assert.Contains(t, metricsBody, `simplify_sentences_processed_total{level="2"} 2`)
}

func TestBatch_JSON(t *testing.T) {
	h := newTestServer(t, Config{Workers: 4})

	rec := do(t, h, http.MethodPost, "/v1/batch",
		`{"sentences":["very tired cat","the cat is on the mat","","We accomplish not"],"level":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, []string{"tired cat", "cat mat", "", "we don't"}, resp.Results)
	assert.Equal(t, 2, resp.Level)
}

func TestBatch_Validation(t *testing.T) {
	h := newTestServer(t, Config{MaxBatchSize: 2})

	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"sentences":[]}`},
		{"too large", `{"sentences":["a","b","c"]}`},
		{"invalid level", `{"sentences":["a"],"level":5}`},
		{"bad json", `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/batch", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestBatch_Stream(t *testing.T) {
	h := newTestServer(t, Config{Workers: 2}, WithMetrics(metrics.New()))

	rec := do(t, h, http.MethodPost, "/v1/batch",
		`{"sentences":["very tired cat","the cat is on the mat","Reports are used by managers"],"level":3}`,
		"Accept", "text/event-stream")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, "event: result"))
	assert.Equal(t, 3, strings.Count(body, "event: progress"))
	assert.Equal(t, 1, strings.Count(body, "event: complete"))
	assert.Contains(t, body, `"output":"reports do managers"`)
}

func TestExplain(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodPost, "/v1/explain", `{"sentence":"very tired cat","level":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var trace simplify.Trace
	decodeBody(t, rec, &trace)
	assert.Equal(t, "tired cat", trace.Output)
	assert.Len(t, trace.Steps, 9)

	rec = do(t, h, http.MethodPost, "/v1/explain", `{"sentence":"x","level":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLevels(t *testing.T) {
	h := newTestServer(t, Config{})

	var resp LevelsResponse
	decodeBody(t, do(t, h, http.MethodGet, "/v1/levels", ""), &resp)

	assert.Equal(t, 1, resp.Default)
	assert.Equal(t, []LevelInfo{
		{1, "minimal"}, {2, "moderate"}, {3, "aggressive"}, {4, "maximum"},
	}, resp.Levels)
}

func TestRules(t *testing.T) {
	h := newTestServer(t, Config{})

	var resp RulesResponse
	decodeBody(t, do(t, h, http.MethodGet, "/v1/rules", ""), &resp)

	assert.Contains(t, resp.StopWords, "the")
	assert.Contains(t, resp.UnnecessaryAdjectives, "very")
	require.NotEmpty(t, resp.Synonyms)
	assert.Equal(t, "utilize", resp.Synonyms[0].From)
	assert.Len(t, resp.Levels, 4)
}

func TestAuth(t *testing.T) {
	h := newTestServer(t, Config{APIKeys: []string{"secret", " "}})
	body := `{"sentence":"the cat"}`

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/v1/simplify", body).Code)
	assert.Equal(t, http.StatusUnauthorized,
		do(t, h, http.MethodPost, "/v1/simplify", body, "Authorization", "Bearer wrong").Code)
	assert.Equal(t, http.StatusOK,
		do(t, h, http.MethodPost, "/v1/simplify", body, "Authorization", "Bearer secret").Code)

	// health stays open
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodGet, "/health", "")
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err, "generated request ID should be a UUID")

	rec = do(t, h, http.MethodGet, "/health", "", "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, Config{APIKeys: []string{"secret"}})

	rec := do(t, h, http.MethodOptions, "/v1/simplify", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("/v1/simplify")))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)
}
