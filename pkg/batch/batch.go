// Package batch simplifies many sentences concurrently. A bounded worker
// pool fans sentences out and the results come back in input order, so the
// output matches a sequential run at the same level.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Siddhant-K-code/simplify/pkg/simplify"
)

// Simplifier is the per-call simplification the workers use. Both
// *simplify.Simplifier and *cache.Memo satisfy it.
type Simplifier interface {
	SimplifyAt(sentence string, level int) (string, error)
}

// Config holds batch runner configuration.
type Config struct {
	// Workers is the number of concurrent simplification workers.
	Workers int

	// ChannelBuffer is the buffer size for the job and result channels.
	ChannelBuffer int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:       runtime.NumCPU(),
		ChannelBuffer: 256,
	}
}

// Record is one input sentence with an optional caller-supplied ID.
type Record struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

// Result is one simplified record.
type Result struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Stats tracks batch progress.
type Stats struct {
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	Skipped   int            `json:"skipped"`
	Reduction simplify.Stats `json:"reduction"`
	StartTime time.Time      `json:"-"`
	EndTime   time.Time      `json:"-"`
}

// Duration returns the total processing duration.
func (s Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// SentencesPerSecond returns the throughput.
func (s Stats) SentencesPerSecond() float64 {
	d := s.Duration().Seconds()
	if d == 0 {
		return 0
	}
	return float64(s.Processed) / d
}

// ProgressCallback is called after each completed sentence.
type ProgressCallback func(stats Stats)

// ResultCallback is called once per result, in completion order.
type ResultCallback func(Result)

// Runner simplifies records with a worker pool.
type Runner struct {
	cfg        Config
	simplifier Simplifier
}

// New creates a Runner. Non-positive config values fall back to defaults.
func New(s Simplifier, cfg Config) *Runner {
	defaults := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.ChannelBuffer <= 0 {
		cfg.ChannelBuffer = defaults.ChannelBuffer
	}
	return &Runner{cfg: cfg, simplifier: s}
}

// Workers returns the configured pool size.
func (r *Runner) Workers() int {
	return r.cfg.Workers
}

// Run simplifies sentences at level and returns outputs in input order.
func (r *Runner) Run(ctx context.Context, sentences []string, level int, progress ProgressCallback) ([]string, Stats, error) {
	records := make([]Record, len(sentences))
	for i, s := range sentences {
		records[i] = Record{Text: s}
	}

	results, stats, err := r.Process(ctx, records, level, nil, progress)
	if err != nil {
		return nil, stats, err
	}

	out := make([]string, len(results))
	for i, res := range results {
		out[i] = res.Output
	}
	return out, stats, nil
}

// Process simplifies records at level. onResult and progress are invoked
// from the calling goroutine. The returned results are in input order. The
// first simplification error cancels the remaining work.
func (r *Runner) Process(ctx context.Context, records []Record, level int, onResult ResultCallback, progress ProgressCallback) ([]Result, Stats, error) {
	stats := Stats{Total: len(records), StartTime: time.Now()}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int, r.cfg.ChannelBuffer)
	done := make(chan outcome, r.cfg.ChannelBuffer)

	// Feeder
	go func() {
		defer close(jobs)
		for i := range records {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Workers
	var wg sync.WaitGroup
	for i := 0; i < r.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, records, level, jobs, done)
		}()
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	results := make([]Result, len(records))
	var firstErr error
	for o := range done {
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
				cancel()
			}
			continue
		}
		if firstErr != nil {
			continue
		}

		results[o.result.Index] = o.result
		stats.Processed++
		stats.Reduction.Add(simplify.Measure(o.result.Input, o.result.Output))

		if onResult != nil {
			onResult(o.result)
		}
		if progress != nil {
			progress(stats)
		}
	}

	stats.EndTime = time.Now()

	if firstErr != nil {
		return nil, stats, firstErr
	}
	if err := ctx.Err(); err != nil && stats.Processed < stats.Total {
		return nil, stats, fmt.Errorf("batch interrupted after %d of %d sentences: %w", stats.Processed, stats.Total, err)
	}
	return results, stats, nil
}

type outcome struct {
	result Result
	err    error
}

func (r *Runner) worker(ctx context.Context, records []Record, level int, jobs <-chan int, done chan<- outcome) {
	for i := range jobs {
		if ctx.Err() != nil {
			return
		}

		rec := records[i]
		out, err := r.simplifier.SimplifyAt(rec.Text, level)

		o := outcome{err: err}
		if err == nil {
			o.result = Result{Index: i, ID: rec.ID, Input: rec.Text, Output: out}
		}

		select {
		case done <- o:
		case <-ctx.Done():
			return
		}
	}
}

// IsInvalidLevel reports whether err came from a bad level.
func IsInvalidLevel(err error) bool {
	return errors.Is(err, simplify.ErrInvalidLevel)
}
