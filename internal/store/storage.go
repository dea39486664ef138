// Package store implements the cache's storage engine: a fixed-bucket
// concurrent hash table with per-entry TTL, an intrusive LRU list, and
// approximate-LRU eviction under a configured memory budget.
package store

import (
	"errors"
	"sync"
	"time"
)

// bucketCount is fixed and never resized, matching the reference design
// (large workloads degrade to O(n/1024) chains — a known, accepted
// limitation, not a bug).
const bucketCount = 1024

// ErrOutOfMemory is returned by Set when eviction could not free enough
// room for the new entry.
var ErrOutOfMemory = errors.New("out of memory")

// StatsSink receives storage-level observability events. Storage calls
// these methods while still holding its own lock (the read lock on Get,
// the write lock on mutations), so the lock order is storage before
// stats.
type StatsSink interface {
	IncCacheHit()
	IncCacheMiss()
	SetUsedMemory(bytes int64)
}

type noopSink struct{}

func (noopSink) IncCacheHit()            {}
func (noopSink) IncCacheMiss()           {}
func (noopSink) SetUsedMemory(int64) {}

// Storage is the concurrent, TTL-aware, approximate-LRU key-value store.
type Storage struct {
	mu sync.RWMutex

	buckets [bucketCount]*Entry

	entryCount int64
	memoryUsed int64
	maxMemory  int64
	defaultTTL int64 // seconds, 0 = none

	lruHead, lruTail *Entry

	sink StatsSink
}

// New creates a Storage with the given memory budget (bytes, 0 = unbounded)
// and default TTL (0 = no expiry by default). sink may be nil.
func New(maxMemoryBytes int64, defaultTTL time.Duration, sink StatsSink) *Storage {
	if sink == nil {
		sink = noopSink{}
	}
	return &Storage{
		maxMemory:  maxMemoryBytes,
		defaultTTL: int64(defaultTTL / time.Second),
		sink:       sink,
	}
}

func (s *Storage) findLocked(key string) *Entry {
	idx := djb2(key) % bucketCount
	now := time.Now().Unix()
	for e := s.buckets[idx]; e != nil; e = e.hNext {
		if e.key == key {
			if e.isExpired(now) {
				return nil
			}
			return e
		}
	}
	return nil
}

// Get returns a fresh copy of the stored value, or ok=false if the key is
// absent or expired. Recency is recorded (lastAccessed/accessCount) but
// the LRU list is not touched — per the reference design, GET is a
// read-lock path and LRU position is only updated on writes ("approximate
// LRU", spec'd as intentional, not a bug to fix).
func (s *Storage) Get(key string) (value []byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.findLocked(key)
	if e == nil {
		s.sink.IncCacheMiss()
		return nil, false
	}
	s.sink.IncCacheHit()
	e.touch(time.Now().Unix())

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true
}

// Exists reports presence without touching recency.
func (s *Storage) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(key) != nil
}

func (s *Storage) unlinkBucketLocked(e *Entry) {
	idx := djb2(e.key) % bucketCount
	if e.hPrev != nil {
		e.hPrev.hNext = e.hNext
	} else {
		s.buckets[idx] = e.hNext
	}
	if e.hNext != nil {
		e.hNext.hPrev = e.hPrev
	}
	e.hNext, e.hPrev = nil, nil
}

func (s *Storage) linkBucketHeadLocked(e *Entry) {
	idx := djb2(e.key) % bucketCount
	e.hPrev = nil
	e.hNext = s.buckets[idx]
	if s.buckets[idx] != nil {
		s.buckets[idx].hPrev = e
	}
	s.buckets[idx] = e
}

func (s *Storage) lruRemoveLocked(e *Entry) {
	if e.lruPrev != nil {
		e.lruPrev.lruNext = e.lruNext
	} else {
		s.lruHead = e.lruNext
	}
	if e.lruNext != nil {
		e.lruNext.lruPrev = e.lruPrev
	} else {
		s.lruTail = e.lruPrev
	}
	e.lruPrev, e.lruNext = nil, nil
}

func (s *Storage) lruAddHeadLocked(e *Entry) {
	e.lruPrev = nil
	e.lruNext = s.lruHead
	if s.lruHead != nil {
		s.lruHead.lruPrev = e
	} else {
		s.lruTail = e
	}
	s.lruHead = e
}

func (s *Storage) lruMoveHeadLocked(e *Entry) {
	if e == s.lruHead {
		return
	}
	s.lruRemoveLocked(e)
	s.lruAddHeadLocked(e)
}

// evictLocked repeatedly evicts from the LRU tail until freed meets
// needed or the list is exhausted. Caller must hold the write lock.
func (s *Storage) evictLocked(needed int64) (freed int64) {
	for freed < needed && s.lruTail != nil {
		victim := s.lruTail
		s.lruRemoveLocked(victim)
		s.unlinkBucketLocked(victim)

		sz := victim.memSize()
		freed += sz
		s.memoryUsed -= sz
		s.entryCount--
	}
	if freed > 0 {
		s.sink.SetUsedMemory(s.memoryUsed)
	}
	return freed
}

func (s *Storage) resolveExpiry(ttl time.Duration) int64 {
	switch {
	case ttl > 0:
		return time.Now().Unix() + int64(ttl/time.Second)
	case ttl == 0 && s.defaultTTL > 0:
		return time.Now().Unix() + s.defaultTTL
	default:
		return 0
	}
}

// Set inserts or replaces key's value. ttl == 0 means "use default TTL if
// configured, else never expire"; ttl < 0 also means never expire (an
// explicit request to persist). Returns ErrOutOfMemory if eviction could
// not make room for a brand-new key.
func (s *Storage) Set(key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findLocked(key); existing != nil {
		delta := int64(len(value)) - int64(len(existing.value))
		existing.value = append([]byte(nil), value...)
		s.memoryUsed += delta
		existing.expiresAt = s.resolveExpiry(ttl)
		existing.touch(time.Now().Unix())
		s.lruMoveHeadLocked(existing)
		s.sink.SetUsedMemory(s.memoryUsed)
		return nil
	}

	keyLen := int64(len(key))
	valLen := int64(len(value))
	wouldBe := s.memoryUsed + keyLen + valLen

	if s.maxMemory > 0 && wouldBe > s.maxMemory {
		needed := wouldBe - s.maxMemory
		s.evictLocked(needed)
		if s.memoryUsed+keyLen+valLen > s.maxMemory {
			return ErrOutOfMemory
		}
	}

	entry := newEntry(key, append([]byte(nil), value...), s.resolveExpiry(ttl))
	s.linkBucketHeadLocked(entry)
	s.lruAddHeadLocked(entry)
	s.entryCount++
	s.memoryUsed += keyLen + valLen
	s.sink.SetUsedMemory(s.memoryUsed)
	return nil
}

// Del removes each listed key that is present (and not expired) and
// returns the count actually removed.
func (s *Storage) Del(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, key := range keys {
		e := s.findLocked(key)
		if e == nil {
			continue
		}
		s.lruRemoveLocked(e)
		s.unlinkBucketLocked(e)
		s.memoryUsed -= e.memSize()
		s.entryCount--
		removed++
	}
	if removed > 0 {
		s.sink.SetUsedMemory(s.memoryUsed)
	}
	return removed
}

// Expire sets key's expiry ttl seconds from now (ttl <= 0 clears it,
// i.e. never expires). Returns 1 if key existed, 0 if absent.
func (s *Storage) Expire(key string, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.findLocked(key)
	if e == nil {
		return 0
	}
	if ttl > 0 {
		e.expiresAt = time.Now().Unix() + int64(ttl/time.Second)
	} else {
		e.expiresAt = 0
	}
	return 1
}

// TTL reports remaining seconds: -1 if key absent/expired, -2 if present
// with no expiry, else the floor of seconds remaining (values <= 0 are
// reported as -1, since the key is about to/has just expired).
func (s *Storage) TTL(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.findLocked(key)
	if e == nil {
		return -1
	}
	if e.expiresAt == 0 {
		return -2
	}
	remaining := e.expiresAt - time.Now().Unix()
	if remaining <= 0 {
		return -1
	}
	return remaining
}

// CleanupExpired walks every bucket and drops entries whose expiry has
// passed, returning the count removed. Called once per second by the
// maintenance loop, independent of any GET/TTL access.
func (s *Storage) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	removed := 0
	for i := 0; i < bucketCount; i++ {
		e := s.buckets[i]
		for e != nil {
			next := e.hNext
			if e.expiresAt > 0 && now >= e.expiresAt {
				s.lruRemoveLocked(e)
				s.unlinkBucketLocked(e)
				s.memoryUsed -= e.memSize()
				s.entryCount--
				removed++
			}
			e = next
		}
	}
	if removed > 0 {
		s.sink.SetUsedMemory(s.memoryUsed)
	}
	return removed
}

// EntryCount returns the number of live entries.
func (s *Storage) EntryCount() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entryCount
}

// MemoryUsed returns the accounted value-payload memory in bytes.
func (s *Storage) MemoryUsed() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryUsed
}

// SetMaxMemory adjusts the budget. Shrinking does not proactively evict;
// the next Set that would exceed the new budget triggers eviction.
func (s *Storage) SetMaxMemory(maxMemoryBytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxMemory = maxMemoryBytes
}

// SetDefaultTTL adjusts the default TTL applied when Set is called with
// ttl == 0.
func (s *Storage) SetDefaultTTL(defaultTTL time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultTTL = int64(defaultTTL / time.Second)
}
