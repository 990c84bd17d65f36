// Package ttlcache implements the two retrieval cache levels: a
// many-entry TTL cache for query results and a single-entry snapshot for
// the embedded-document corpus. Expiry is lazy - an entry older than the
// TTL is treated as absent on the next read and removed then. There is no
// background sweep and no per-entry eviction; mutations clear a cache
// wholesale (coarse invalidation).
package ttlcache

import (
	"sync"
	"time"
)

// Entry is a cached value with its insertion time.
type Entry[V any] struct {
	Value      V
	InsertedAt time.Time
}

// Cache is a string-keyed TTL cache. Concurrent use is safe; a racing
// invalidation costs readers at most one extra recomputation.
type Cache[V any] struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]Entry[V]
	now     func() time.Time
}

// New creates a cache whose entries live for ttl.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]Entry[V]),
		now:     time.Now,
	}
}

// Get returns the live value for key. Expired entries are removed and
// reported as absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if c.now().Sub(entry.InsertedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: the entry may have been
		// replaced by a fresh one since the read.
		if cur, ok := c.entries[key]; ok && cur.InsertedAt.Equal(entry.InsertedAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return entry.Value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry[V]{Value: value, InsertedAt: c.now()}
}

// Invalidate removes every entry.
func (c *Cache[V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry[V])
}

// Len returns the current entry count, expired entries included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot is a single-entry TTL cache. It holds the corpus snapshot of
// documents currently carrying an embedding.
type Snapshot[V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	entry *Entry[V]
	now   func() time.Time
}

// NewSnapshot creates a snapshot cache whose value lives for ttl.
func NewSnapshot[V any](ttl time.Duration) *Snapshot[V] {
	return &Snapshot[V]{ttl: ttl, now: time.Now}
}

// Get returns the live snapshot, if any.
func (s *Snapshot[V]) Get() (V, bool) {
	s.mu.RLock()
	entry := s.entry
	s.mu.RUnlock()

	var zero V
	if entry == nil {
		return zero, false
	}
	if s.now().Sub(entry.InsertedAt) > s.ttl {
		s.mu.Lock()
		// Re-check under the write lock: a racing Set may have replaced
		// the snapshot with a fresh one.
		if s.entry != nil && s.entry.InsertedAt.Equal(entry.InsertedAt) {
			s.entry = nil
		}
		s.mu.Unlock()
		return zero, false
	}
	return entry.Value, true
}

// Set replaces the snapshot.
func (s *Snapshot[V]) Set(value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = &Entry[V]{Value: value, InsertedAt: s.now()}
}

// Invalidate drops the snapshot.
func (s *Snapshot[V]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry = nil
}
