// Package cache provides a bounded, TTL-based in-memory cache for text
// embeddings. Encoding text is the most expensive call in the ranking
// pipeline, so repeated tasks and unchanged content are served from
// here instead of the embedding provider.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/contextpilot/contextpilot-cli/internal/logger"
)

// Default cache configuration.
const (
	DefaultMaxSize    = 1000
	DefaultTTLSeconds = 3600
)

// entry is a cached vector with its insertion time.
type entry struct {
	embedding  []float32
	insertedAt time.Time
}

// Stats is a read-only snapshot of the cache configuration and fill.
type Stats struct {
	Size       int
	MaxSize    int
	TTLSeconds int
}

// EmbeddingCache maps hashed text to previously computed embeddings.
//
// Expiry is checked lazily on Get; there is no background sweep, so an
// expired entry can sit in the cache consuming capacity until it is
// read or displaced. Eviction on Put removes the entry with the oldest
// insertion time - insertion recency, not access recency.
//
// Get/Put used together as check-then-insert is not atomic: two
// callers racing on the same text may both encode, and the later Put
// wins. That costs a redundant encode, never corrupts state.
type EmbeddingCache struct {
	mu      sync.Mutex
	entries map[string]entry
	maxSize int
	ttl     time.Duration

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// New creates an embedding cache. Non-positive maxSize or ttlSeconds
// fall back to the defaults.
func New(maxSize, ttlSeconds int) *EmbeddingCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultTTLSeconds
	}
	logger.Debug("Embedding cache initialised (max_size=%d, ttl=%ds)", maxSize, ttlSeconds)
	return &EmbeddingCache{
		entries: make(map[string]entry),
		maxSize: maxSize,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		now:     time.Now,
	}
}

// hashText derives the cache key, so byte-identical strings always
// share an entry regardless of object identity.
func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached embedding for text, or nil on a miss.
// An entry past its TTL is removed and treated as a miss.
func (c *EmbeddingCache) Get(text string) []float32 {
	key := hashText(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil
	}

	if c.now().Sub(e.insertedAt) > c.ttl {
		delete(c.entries, key)
		logger.Debug("Cache entry expired for key %s...", key[:8])
		return nil
	}

	logger.Debug("Cache hit for key %s...", key[:8])
	return e.embedding
}

// Put stores an embedding for text. When the cache is full, the entry
// with the oldest insertion time is evicted first.
func (c *EmbeddingCache) Put(text string, embedding []float32) {
	key := hashText(text)

	// Copy so later mutation by the caller cannot corrupt the entry.
	vec := make([]float32, len(embedding))
	copy(vec, embedding)

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	c.entries[key] = entry{embedding: vec, insertedAt: c.now()}
	logger.Debug("Cached embedding for key %s...", key[:8])
}

// evictOldestLocked removes the entry with the oldest insertedAt.
// Caller must hold the lock.
func (c *EmbeddingCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, e := range c.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.insertedAt
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		logger.Debug("Evicted oldest cache entry %s...", oldestKey[:8])
	}
}

// Clear drops all entries unconditionally.
func (c *EmbeddingCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	logger.Debug("Cleared embedding cache")
}

// Size returns the current number of entries.
func (c *EmbeddingCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of cache configuration and fill.
func (c *EmbeddingCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:       len(c.entries),
		MaxSize:    c.maxSize,
		TTLSeconds: int(c.ttl / time.Second),
	}
}
