// Package cache memoizes simplification results. Output is a pure function
// of (sentence, level, rule tables), so a result computed once can be served
// again until it expires or is evicted.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"
)

// ErrNotFound is returned by Get and Delete for absent or expired keys.
var ErrNotFound = errors.New("key not found")

// Cache stores simplified sentences by key.
type Cache interface {
	// Get retrieves a value by key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value. Zero TTL falls back to the configured default.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key from the cache.
	Delete(ctx context.Context, key string) error

	// Has reports whether a live entry exists without touching recency.
	Has(ctx context.Context, key string) bool

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Stats returns a snapshot of the counters.
	Stats() Stats

	// Close releases resources.
	Close() error
}

// Stats holds cache counters.
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Evictions   int64 `json:"evictions"`
	Expirations int64 `json:"expirations"`
	Size        int64 `json:"size"`
	MaxSize     int64 `json:"max_size"`
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Config holds cache configuration.
type Config struct {
	// MaxSize is the maximum number of entries.
	MaxSize int64

	// DefaultTTL applies to entries set without a TTL. Zero means entries
	// never expire.
	DefaultTTL time.Duration

	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxSize:         10000,
		DefaultTTL:      time.Hour,
		CleanupInterval: time.Minute,
	}
}

// Key derives the cache key for a sentence simplified at level.
func Key(level int, sentence string) string {
	return strconv.Itoa(level) + ":" + HashText(sentence)
}

// HashText returns the hex sha256 digest of text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
