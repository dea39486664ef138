package store

import (
	"sync/atomic"
	"time"
)

// Entry is a single stored key. It participates in two intrusive
// doubly-linked structures simultaneously: the hash bucket chain it
// hashes into, and the process-wide LRU list. Both link sets are owned
// exclusively by the Storage that created the entry — an Entry is never
// shared across engines and never outlives the Storage that holds it.
type Entry struct {
	key   string
	value []byte

	createdAt    int64 // unix seconds
	expiresAt    int64 // unix seconds; 0 = never
	lastAccessed atomic.Int64
	accessCount  atomic.Uint64

	// bucket chain (order irrelevant)
	hNext, hPrev *Entry

	// LRU list: head = most recently used, tail = least recently used
	lruNext, lruPrev *Entry
}

func newEntry(key string, value []byte, expiresAt int64) *Entry {
	e := &Entry{
		key:       key,
		value:     value,
		createdAt: time.Now().Unix(),
		expiresAt: expiresAt,
	}
	e.lastAccessed.Store(e.createdAt)
	return e
}

// isExpired reports whether the entry's TTL has passed. expiresAt == 0
// means "never expires".
func (e *Entry) isExpired(now int64) bool {
	return e.expiresAt != 0 && now >= e.expiresAt
}

// touch records a read: bumps last-accessed and the access counter.
// Both fields are atomic so this is race-free even when called while the
// caller holds only Storage's read lock (spec's GET path), resolving the
// data race the C reference leaves undocumented.
func (e *Entry) touch(now int64) {
	e.lastAccessed.Store(now)
	e.accessCount.Add(1)
}

// memSize is the accounted memory contribution of this entry: key bytes
// plus value bytes. Metadata (timestamps, links, struct overhead) is
// deliberately not counted — the budget is a value-payload budget.
func (e *Entry) memSize() int64 {
	return int64(len(e.key)) + int64(len(e.value))
}
