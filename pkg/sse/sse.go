// Package sse streams batch simplification results and progress to HTTP
// clients as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Event names written on the "event:" line.
const (
	EventResult   = "result"
	EventProgress = "progress"
	EventComplete = "complete"
	EventError    = "error"
)

// ResultEvent carries one simplified sentence.
type ResultEvent struct {
	Index  int    `json:"index"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// ProgressEvent reports how many sentences are done.
type ProgressEvent struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Progress  float64 `json:"progress"`
}

// CompleteEvent is sent once after the last result.
type CompleteEvent struct {
	Level     int             `json:"level"`
	Stats     json.RawMessage `json:"stats"`
	ElapsedMs int64           `json:"elapsed_ms"`
}

// ErrorEvent is sent when processing fails.
type ErrorEvent struct {
	Error string `json:"error"`
}

// Writer wraps an http.ResponseWriter for SSE output.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started time.Time
}

// NewWriter sets the streaming headers and writes the status line.
// It returns nil if w cannot flush.
func NewWriter(w http.ResponseWriter) *Writer {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Writer{w: w, flusher: flusher, started: time.Now()}
}

// SendResult emits one simplified sentence.
func (s *Writer) SendResult(index int, input, output string) error {
	return s.sendEvent(EventResult, ResultEvent{Index: index, Input: input, Output: output})
}

// SendProgress emits completed/total.
func (s *Writer) SendProgress(completed, total int) error {
	evt := ProgressEvent{Completed: completed, Total: total}
	if total > 0 {
		evt.Progress = float64(completed) / float64(total)
	}
	return s.sendEvent(EventProgress, evt)
}

// SendComplete emits the final event with aggregate stats.
func (s *Writer) SendComplete(level int, stats interface{}) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return s.sendEvent(EventComplete, CompleteEvent{
		Level:     level,
		Stats:     statsJSON,
		ElapsedMs: time.Since(s.started).Milliseconds(),
	})
}

// SendError emits an error event.
func (s *Writer) SendError(errMsg string) error {
	return s.sendEvent(EventError, ErrorEvent{Error: errMsg})
}

func (s *Writer) sendEvent(eventType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	return nil
}
