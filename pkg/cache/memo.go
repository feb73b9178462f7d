package cache

import (
	"context"
	"errors"
	"time"
)

// Simplifier is the per-call simplification Memo wraps.
type Simplifier interface {
	SimplifyAt(sentence string, level int) (string, error)
}

// Memo serves repeated (level, sentence) pairs from a Cache and falls
// through to the wrapped Simplifier on a miss. Errors are never cached.
type Memo struct {
	next     Simplifier
	cache    Cache
	ttl      time.Duration
	onLookup func(hit bool)
}

// MemoOption configures a Memo.
type MemoOption func(*Memo)

// WithTTL overrides the cache's default TTL for memoized entries.
func WithTTL(ttl time.Duration) MemoOption {
	return func(m *Memo) { m.ttl = ttl }
}

// WithLookupHook is called after every cache lookup.
func WithLookupHook(fn func(hit bool)) MemoOption {
	return func(m *Memo) { m.onLookup = fn }
}

// NewMemo wraps next with c.
func NewMemo(next Simplifier, c Cache, opts ...MemoOption) *Memo {
	m := &Memo{next: next, cache: c}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SimplifyAt implements Simplifier.
func (m *Memo) SimplifyAt(sentence string, level int) (string, error) {
	out, _, err := m.Lookup(context.Background(), sentence, level)
	return out, err
}

// Lookup returns the simplified sentence and whether it came from the cache.
func (m *Memo) Lookup(ctx context.Context, sentence string, level int) (string, bool, error) {
	key := Key(level, sentence)

	out, err := m.cache.Get(ctx, key)
	hit := err == nil
	if m.onLookup != nil {
		m.onLookup(hit)
	}
	if hit {
		return out, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", false, err
	}

	out, err = m.next.SimplifyAt(sentence, level)
	if err != nil {
		return "", false, err
	}
	if err := m.cache.Set(ctx, key, out, m.ttl); err != nil {
		return "", false, err
	}
	return out, false, nil
}
