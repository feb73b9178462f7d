package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNew(t *testing.T) {
	m := New()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if m.registry == nil {
		t.Fatal("registry is nil")
	}
}

func TestRecordRequest(t *testing.T) {
	m := New()
	m.RecordRequest("/v1/simplify", 200, 5*time.Millisecond)
	m.RecordRequest("/v1/simplify", 200, 10*time.Millisecond)
	m.RecordRequest("/v1/simplify", 400, time.Millisecond)

	val := counterValue(t, m.RequestsTotal, "endpoint", "/v1/simplify", "status", "200")
	if val != 2 {
		t.Errorf("expected 2 requests with status 200, got %f", val)
	}

	val = counterValue(t, m.RequestsTotal, "endpoint", "/v1/simplify", "status", "400")
	if val != 1 {
		t.Errorf("expected 1 request with status 400, got %f", val)
	}
}

func TestRecordSimplification(t *testing.T) {
	m := New()
	m.RecordSimplification(2, 6, 2)
	m.RecordSimplification(2, 3, 3)
	m.RecordSimplification(4, 5, 1)

	if val := counterValue(t, m.SentencesProcessed, "level", "2"); val != 2 {
		t.Errorf("expected 2 sentences at level 2, got %f", val)
	}
	if val := counterValue(t, m.SentencesProcessed, "level", "4"); val != 1 {
		t.Errorf("expected 1 sentence at level 4, got %f", val)
	}
	if val := counterValue(t, m.WordsProcessed, "direction", "input"); val != 14 {
		t.Errorf("expected 14 input words, got %f", val)
	}
	if val := counterValue(t, m.WordsProcessed, "direction", "output"); val != 6 {
		t.Errorf("expected 6 output words, got %f", val)
	}
}

func TestRecordSimplification_ZeroInput(t *testing.T) {
	m := New()
	// empty sentences must not divide by zero
	m.RecordSimplification(1, 0, 0)

	if val := counterValue(t, m.SentencesProcessed, "level", "1"); val != 1 {
		t.Errorf("expected 1 sentence, got %f", val)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	m := New()
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)

	if val := counterValue(t, m.CacheLookups, "result", "hit"); val != 1 {
		t.Errorf("expected 1 hit, got %f", val)
	}
	if val := counterValue(t, m.CacheLookups, "result", "miss"); val != 2 {
		t.Errorf("expected 2 misses, got %f", val)
	}
}

func TestMiddleware(t *testing.T) {
	m := New()

	handler := m.Middleware("/v1/simplify", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/simplify", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	val := counterValue(t, m.RequestsTotal, "endpoint", "/v1/simplify", "status", "200")
	if val != 1 {
		t.Errorf("expected 1 request recorded, got %f", val)
	}
}

func TestMiddleware_ErrorStatus(t *testing.T) {
	m := New()

	handler := m.Middleware("/v1/simplify", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/simplify", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	val := counterValue(t, m.RequestsTotal, "endpoint", "/v1/simplify", "status", "400")
	if val != 1 {
		t.Errorf("expected 1 request with status 400, got %f", val)
	}
}

func TestMiddleware_Flush(t *testing.T) {
	m := New()

	handler := m.Middleware("/v1/batch", func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("wrapped writer should implement http.Flusher")
		}
		_, _ = w.Write([]byte("data: x\n\n"))
		f.Flush()
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/batch", nil))

	if !rec.Flushed {
		t.Error("expected recorder to be flushed")
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordRequest("/v1/simplify", 200, 10*time.Millisecond)
	m.RecordSimplification(1, 4, 2)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, name := range []string{
		"simplify_requests_total",
		"simplify_request_duration_seconds",
		"simplify_sentences_processed_total",
		"simplify_word_reduction_ratio",
		"go_goroutines",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestActiveRequests(t *testing.T) {
	m := New()

	started := make(chan struct{})
	release := make(chan struct{})

	handler := m.Middleware("/v1/simplify", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		req := httptest.NewRequest(http.MethodPost, "/v1/simplify", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}()

	<-started

	var metric dto.Metric
	if err := m.ActiveRequests.Write(&metric); err != nil {
		t.Fatalf("failed to read gauge: %v", err)
	}
	if metric.GetGauge().GetValue() != 1 {
		t.Errorf("expected 1 active request, got %f", metric.GetGauge().GetValue())
	}

	close(release)
}

// counterValue extracts the value of a counter with the given label pairs.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labelPairs ...string) float64 {
	t.Helper()
	labels := prometheus.Labels{}
	for i := 0; i < len(labelPairs); i += 2 {
		labels[labelPairs[i]] = labelPairs[i+1]
	}
	counter, err := cv.GetMetricWith(labels)
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}
