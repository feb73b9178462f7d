// Package simplify rewrites sentences into shorter, lexically simpler forms.
// It applies cumulative, table-driven lexical rules gated by a compression
// level: stop-word removal, synonym and phrase substitution, passive-to-active
// rewriting, auxiliary stripping, long-sentence splitting and number
// normalization. No parsing or inference is involved; output is a pure
// function of the sentence, the level and the rule tables.
package simplify

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/Siddhant-K-code/simplify/pkg/rules"
)

// Simplifier applies the simplification pipeline. The rule tables and
// compiled patterns are read-only, so one Simplifier may be shared across
// goroutines. The active level is guarded; concurrent callers that need
// different levels should use SimplifyAt instead of SetLevel.
type Simplifier struct {
	rules   *rules.Tables
	logger  zerolog.Logger
	stages  []stage
	numbers []replacement

	mu    sync.RWMutex
	level int
}

// Option configures a Simplifier.
type Option func(*Simplifier)

// WithLogger sets the sink for the before/after diagnostic events.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Simplifier) { s.logger = logger }
}

// WithLevel sets the initial active level.
func WithLevel(level int) Option {
	return func(s *Simplifier) { s.level = level }
}

// New creates a Simplifier over tables. A nil tables uses rules.Default().
// The initial level defaults to the lowest configured level.
func New(tables *rules.Tables, opts ...Option) (*Simplifier, error) {
	if tables == nil {
		tables = rules.Default()
	}

	s := &Simplifier{
		rules:  tables,
		logger: zerolog.Nop(),
		level:  tables.MinLevel(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.validate(s.level); err != nil {
		return nil, err
	}

	s.numbers = compileReplacements(tables.NumberWords())
	s.stages = s.buildStages()

	return s, nil
}

// Rules returns the tables the Simplifier was built with.
func (s *Simplifier) Rules() *rules.Tables {
	return s.rules
}

// SetLevel changes the active level. It fails with an *InvalidLevelError
// when level is not in the configured level set.
func (s *Simplifier) SetLevel(level int) error {
	if err := s.validate(level); err != nil {
		return err
	}
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
	return nil
}

// Level returns the active level.
func (s *Simplifier) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

// Simplify rewrites sentence at the active level.
func (s *Simplifier) Simplify(sentence string) string {
	return s.simplify(sentence, s.Level())
}

// SimplifyAt rewrites sentence at level without touching the active level.
func (s *Simplifier) SimplifyAt(sentence string, level int) (string, error) {
	if err := s.validate(level); err != nil {
		return "", err
	}
	return s.simplify(sentence, level), nil
}

// Batch simplifies every sentence at the active level. The level is read
// once, so a concurrent SetLevel cannot split a batch across levels.
func (s *Simplifier) Batch(sentences []string) []string {
	return s.batch(sentences, s.Level())
}

// BatchAt simplifies every sentence at level.
func (s *Simplifier) BatchAt(sentences []string, level int) ([]string, error) {
	if err := s.validate(level); err != nil {
		return nil, err
	}
	return s.batch(sentences, level), nil
}

// Explain simplifies sentence at level and reports the output of every stage.
func (s *Simplifier) Explain(sentence string, level int) (*Trace, error) {
	if err := s.validate(level); err != nil {
		return nil, err
	}
	trace := &Trace{
		Input: sentence,
		Level: level,
		Steps: make([]Step, 0, len(s.stages)),
	}
	trace.Output = s.run(sentence, level, trace)
	return trace, nil
}

// ConvertNumbers replaces number words with digits. Each word is replaced on
// its own: "one hundred" becomes "1 100".
func (s *Simplifier) ConvertNumbers(text string) string {
	return applyReplacements(text, s.numbers)
}

func (s *Simplifier) simplify(sentence string, level int) string {
	s.logger.Info().Str("sentence", sentence).Msg("original sentence")
	out := s.run(sentence, level, nil)
	s.logger.Info().
		Int("level", level).
		Str("label", s.rules.Label(level)).
		Str("sentence", out).
		Msg("simplified sentence")
	return out
}

func (s *Simplifier) batch(sentences []string, level int) []string {
	out := make([]string, len(sentences))
	for i, sentence := range sentences {
		out[i] = s.simplify(sentence, level)
	}
	return out
}

func (s *Simplifier) validate(level int) error {
	if s.rules.HasLevel(level) {
		return nil
	}
	return &InvalidLevelError{
		Level: level,
		Min:   s.rules.MinLevel(),
		Max:   s.rules.MaxLevel(),
	}
}
