package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Siddhant-K-code/simplify/pkg/batch"
	"github.com/Siddhant-K-code/simplify/pkg/cache"
	"github.com/Siddhant-K-code/simplify/pkg/rules"
	"github.com/Siddhant-K-code/simplify/pkg/simplify"
	"github.com/Siddhant-K-code/simplify/pkg/sse"
	"github.com/Siddhant-K-code/simplify/pkg/telemetry"
)

// SimplifyRequest is the JSON request body for /v1/simplify and /v1/explain.
// A missing level selects the simplifier's active level.
type SimplifyRequest struct {
	Sentence string `json:"sentence"`
	Level    *int   `json:"level,omitempty"`
}

// SimplifyResponse is the JSON response for /v1/simplify.
type SimplifyResponse struct {
	Sentence   string         `json:"sentence"`
	Simplified string         `json:"simplified"`
	Level      int            `json:"level"`
	Label      string         `json:"label"`
	Cached     bool           `json:"cached"`
	Stats      simplify.Stats `json:"stats"`
}

// BatchRequest is the JSON request body for /v1/batch.
type BatchRequest struct {
	Sentences []string `json:"sentences"`
	Level     *int     `json:"level,omitempty"`
}

// BatchResponse is the JSON response for /v1/batch.
type BatchResponse struct {
	Results   []string       `json:"results"`
	Level     int            `json:"level"`
	Label     string         `json:"label"`
	Stats     simplify.Stats `json:"stats"`
	LatencyMs int64          `json:"latency_ms"`
}

// LevelInfo describes one compression level.
type LevelInfo struct {
	Level int    `json:"level"`
	Label string `json:"label"`
}

// LevelsResponse is the JSON response for /v1/levels.
type LevelsResponse struct {
	Levels  []LevelInfo `json:"levels"`
	Default int         `json:"default"`
}

// RulesResponse is the JSON response for /v1/rules.
type RulesResponse struct {
	StopWords             []string     `json:"stop_words"`
	UnnecessaryAdjectives []string     `json:"unnecessary_adjectives"`
	Synonyms              []rules.Pair `json:"synonyms"`
	RedundantPhrases      []rules.Pair `json:"redundant_phrases"`
	NumberWords           []rules.Pair `json:"number_words"`
	Levels                []LevelInfo  `json:"levels"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// resolveLevel picks the requested level or the active one and validates it.
func (s *Server) resolveLevel(requested *int) (int, error) {
	if requested == nil {
		return s.simplifier.Level(), nil
	}
	if !s.simplifier.Rules().HasLevel(*requested) {
		t := s.simplifier.Rules()
		return 0, &simplify.InvalidLevelError{Level: *requested, Min: t.MinLevel(), Max: t.MaxLevel()}
	}
	return *requested, nil
}

// simplifyOne runs one sentence through the cache (if any) and records
// metrics and spans.
func (s *Server) simplifyOne(ctx context.Context, sentence string, level int) (string, bool, error) {
	inWords := len(strings.Fields(sentence))
	ctx, span := s.tracer.StartSimplify(ctx, level, inWords)
	defer span.End()

	start := time.Now()

	var (
		out    string
		cached bool
		err    error
	)
	if s.memo != nil {
		lookupCtx, lookupSpan := s.tracer.StartCacheLookup(ctx, cache.Key(level, sentence))
		out, cached, err = s.memo.Lookup(lookupCtx, sentence, level)
		telemetry.RecordCacheResult(lookupSpan, cached)
		lookupSpan.End()
	} else {
		out, err = s.simplifier.SimplifyAt(sentence, level)
	}
	if err != nil {
		telemetry.RecordError(span, err)
		return "", false, err
	}

	outWords := len(strings.Fields(out))
	telemetry.RecordResult(span, inWords, outWords, time.Since(start))
	if s.metrics != nil {
		s.metrics.RecordSimplification(level, inWords, outWords)
	}
	return out, cached, nil
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	var req SimplifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	level, err := s.resolveLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, cached, err := s.simplifyOne(r.Context(), req.Sentence, level)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SimplifyResponse{
		Sentence:   req.Sentence,
		Simplified: out,
		Level:      level,
		Label:      s.simplifier.Rules().Label(level),
		Cached:     cached,
		Stats:      simplify.Measure(req.Sentence, out),
	})
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	if len(req.Sentences) == 0 {
		writeError(w, http.StatusBadRequest, "at least one sentence is required")
		return
	}
	if s.cfg.MaxBatchSize > 0 && len(req.Sentences) > s.cfg.MaxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch of %d sentences exceeds limit of %d", len(req.Sentences), s.cfg.MaxBatchSize))
		return
	}

	level, err := s.resolveLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, span := s.tracer.StartBatch(r.Context(), level, len(req.Sentences), s.runner.Workers())
	defer span.End()

	records := make([]batch.Record, len(req.Sentences))
	for i, sentence := range req.Sentences {
		records[i] = batch.Record{Text: sentence}
	}

	record := func(res batch.Result) {
		if s.metrics != nil {
			s.metrics.RecordSimplification(level, len(strings.Fields(res.Input)), len(strings.Fields(res.Output)))
		}
	}

	if strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
		s.streamBatch(ctx, w, records, level, record)
		return
	}

	start := time.Now()
	results, stats, err := s.runner.Process(ctx, records, level, record, nil)
	if err != nil {
		telemetry.RecordError(span, err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	telemetry.RecordResult(span, stats.Reduction.InputWords, stats.Reduction.OutputWords, time.Since(start))

	out := make([]string, len(results))
	for i, res := range results {
		out[i] = res.Output
	}

	writeJSON(w, http.StatusOK, BatchResponse{
		Results:   out,
		Level:     level,
		Label:     s.simplifier.Rules().Label(level),
		Stats:     stats.Reduction,
		LatencyMs: time.Since(start).Milliseconds(),
	})
}

func (s *Server) streamBatch(ctx context.Context, w http.ResponseWriter, records []batch.Record, level int, record batch.ResultCallback) {
	sw := sse.NewWriter(w)
	if sw == nil {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	logger := zerolog.Ctx(ctx)

	_, stats, err := s.runner.Process(ctx, records, level,
		func(res batch.Result) {
			record(res)
			if err := sw.SendResult(res.Index, res.Input, res.Output); err != nil {
				logger.Warn().Err(err).Msg("failed to send result event")
			}
		},
		func(st batch.Stats) {
			_ = sw.SendProgress(st.Processed, st.Total)
		},
	)
	if err != nil {
		_ = sw.SendError(err.Error())
		return
	}
	_ = sw.SendComplete(level, stats.Reduction)
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req SimplifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	level, err := s.resolveLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trace, err := s.simplifier.Explain(req.Sentence, level)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, trace)
}

func (s *Server) levelInfo() []LevelInfo {
	t := s.simplifier.Rules()
	levels := t.Levels()
	out := make([]LevelInfo, len(levels))
	for i, l := range levels {
		out[i] = LevelInfo{Level: l, Label: t.Label(l)}
	}
	return out
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LevelsResponse{
		Levels:  s.levelInfo(),
		Default: s.simplifier.Level(),
	})
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	t := s.simplifier.Rules()
	writeJSON(w, http.StatusOK, RulesResponse{
		StopWords:             t.StopWords().Words(),
		UnnecessaryAdjectives: t.UnnecessaryAdjectives().Words(),
		Synonyms:              t.Synonyms(),
		RedundantPhrases:      t.RedundantPhrases(),
		NumberWords:           t.NumberWords(),
		Levels:                s.levelInfo(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    "simplify API",
		"version": "0.1.0",
		"endpoints": map[string]string{
			"simplify": "POST /v1/simplify",
			"batch":    "POST /v1/batch",
			"explain":  "POST /v1/explain",
			"levels":   "GET /v1/levels",
			"rules":    "GET /v1/rules",
			"health":   "GET /health",
		},
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, simplify.ErrInvalidLevel):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
