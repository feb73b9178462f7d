// Package rules holds the lexical rule tables that drive sentence simplification.
// Tables are built once and never mutated, so a single instance can be shared by
// any number of simplifiers and goroutines.
package rules

import (
	"errors"
	"sort"
	"strings"
)

// ErrNoLevels is returned when a table set has no compression levels.
var ErrNoLevels = errors.New("level table is empty")

// Pair is one ordered key -> value entry of a Mapping.
type Pair struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Set is an immutable string set.
type Set struct {
	items map[string]struct{}
}

// NewSet builds a set from words. Words are lowercased.
func NewSet(words ...string) Set {
	items := make(map[string]struct{}, len(words))
	for _, w := range words {
		items[strings.ToLower(w)] = struct{}{}
	}
	return Set{items: items}
}

// Has reports whether word is in the set.
func (s Set) Has(word string) bool {
	_, ok := s.items[word]
	return ok
}

// Len returns the number of words in the set.
func (s Set) Len() int {
	return len(s.items)
}

// Words returns the set contents in sorted order.
func (s Set) Words() []string {
	words := make([]string, 0, len(s.items))
	for w := range s.items {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Mapping is an immutable, insertion-ordered key -> value table.
// Building a Mapping from pairs with a repeated key keeps a single entry at the
// key's first position holding the last value written.
type Mapping struct {
	pairs []Pair
	index map[string]int
}

// NewMapping builds an ordered mapping from pairs.
func NewMapping(pairs ...Pair) Mapping {
	m := Mapping{
		pairs: make([]Pair, 0, len(pairs)),
		index: make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		if i, ok := m.index[p.From]; ok {
			m.pairs[i].To = p.To
			continue
		}
		m.index[p.From] = len(m.pairs)
		m.pairs = append(m.pairs, p)
	}
	return m
}

// Lookup returns the value for key.
func (m Mapping) Lookup(key string) (string, bool) {
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	return m.pairs[i].To, true
}

// Pairs returns a copy of the entries in order.
func (m Mapping) Pairs() []Pair {
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// Len returns the number of entries.
func (m Mapping) Len() int {
	return len(m.pairs)
}

// Tables is the full set of rule tables used by the simplifier.
type Tables struct {
	stopWords  Set
	adjectives Set
	synonyms   Mapping
	redundant  Mapping
	numbers    Mapping
	levels     map[int]string
	levelOrder []int
}

// Option overrides one table at construction time.
type Option func(*Tables)

// WithStopWords replaces the stop-word set.
func WithStopWords(words ...string) Option {
	return func(t *Tables) { t.stopWords = NewSet(words...) }
}

// WithUnnecessaryAdjectives replaces the unnecessary-adjective set.
func WithUnnecessaryAdjectives(words ...string) Option {
	return func(t *Tables) { t.adjectives = NewSet(words...) }
}

// WithSynonyms replaces the synonym table.
func WithSynonyms(pairs ...Pair) Option {
	return func(t *Tables) { t.synonyms = NewMapping(pairs...) }
}

// WithRedundantPhrases replaces the redundant-phrase table.
func WithRedundantPhrases(pairs ...Pair) Option {
	return func(t *Tables) { t.redundant = NewMapping(pairs...) }
}

// WithNumberWords replaces the number-word table.
func WithNumberWords(pairs ...Pair) Option {
	return func(t *Tables) { t.numbers = NewMapping(pairs...) }
}

// WithLevels replaces the compression level labels.
func WithLevels(levels map[int]string) Option {
	return func(t *Tables) {
		t.levels = make(map[int]string, len(levels))
		for k, v := range levels {
			t.levels[k] = v
		}
	}
}

// New builds tables from the defaults with the given overrides applied.
func New(opts ...Option) (*Tables, error) {
	t := defaults()
	for _, opt := range opts {
		opt(t)
	}
	if len(t.levels) == 0 {
		return nil, ErrNoLevels
	}
	t.levelOrder = sortedLevels(t.levels)
	return t, nil
}

// Default returns the compiled-in tables.
func Default() *Tables {
	t := defaults()
	t.levelOrder = sortedLevels(t.levels)
	return t
}

// IsStopWord reports whether token is a stop word.
func (t *Tables) IsStopWord(token string) bool { return t.stopWords.Has(token) }

// IsUnnecessaryAdjective reports whether token is an unnecessary adjective.
func (t *Tables) IsUnnecessaryAdjective(token string) bool { return t.adjectives.Has(token) }

// Synonym returns the single-token synonym replacement for token.
func (t *Tables) Synonym(token string) (string, bool) { return t.synonyms.Lookup(token) }

// StopWords returns the stop-word set.
func (t *Tables) StopWords() Set { return t.stopWords }

// UnnecessaryAdjectives returns the unnecessary-adjective set.
func (t *Tables) UnnecessaryAdjectives() Set { return t.adjectives }

// Synonyms returns the synonym pairs in table order.
func (t *Tables) Synonyms() []Pair { return t.synonyms.Pairs() }

// RedundantPhrases returns the redundant-phrase pairs in table order.
func (t *Tables) RedundantPhrases() []Pair { return t.redundant.Pairs() }

// NumberWords returns the number-word pairs in table order.
func (t *Tables) NumberWords() []Pair { return t.numbers.Pairs() }

// Levels returns the configured levels in ascending order.
func (t *Tables) Levels() []int {
	out := make([]int, len(t.levelOrder))
	copy(out, t.levelOrder)
	return out
}

// HasLevel reports whether level is configured.
func (t *Tables) HasLevel(level int) bool {
	_, ok := t.levels[level]
	return ok
}

// Label returns the descriptive label of level.
func (t *Tables) Label(level int) string {
	return t.levels[level]
}

// MinLevel returns the lowest configured level.
func (t *Tables) MinLevel() int { return t.levelOrder[0] }

// MaxLevel returns the highest configured level.
func (t *Tables) MaxLevel() int { return t.levelOrder[len(t.levelOrder)-1] }

func sortedLevels(levels map[int]string) []int {
	order := make([]int, 0, len(levels))
	for l := range levels {
		order = append(order, l)
	}
	sort.Ints(order)
	return order
}
