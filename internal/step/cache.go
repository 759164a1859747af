package step

import (
	"sync"

	"github.com/legion-prof/profviewer/internal/diag"
	"github.com/legion-prof/profviewer/internal/ids"
)

// sharedResult is the handle stored in the cache: an immutable computed
// Function, safe for any number of concurrent readers once published.
type sharedResult struct {
	fn Function
}

// Cache maps EntryID -> shared step-utilization result. It deliberately
// does not serialize concurrent misses the way the teacher's
// internal/rpc.QueryCache or golang.org/x/sync/singleflight would:
// spec.md §4.2/§5 calls for a short mutex-protected map where two
// concurrent misses may both compute, and the second insert simply
// overwrites the first with an equivalent result. Grounded on the
// teacher's QueryCache shape (mutex + plain map), minus its TTL/eviction
// machinery — panels are finite in number, so there is nothing to evict.
type Cache struct {
	mu      sync.Mutex
	entries map[ids.EntryID]*sharedResult
}

// NewCache constructs an empty step-utilization cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[ids.EntryID]*sharedResult)}
}

// GetOrCompute returns the cached Function for id, computing it via fn
// on a miss. Two goroutines racing on the same miss may both call fn;
// the loser's result is discarded, not an error — see the type doc.
func (c *Cache) GetOrCompute(id ids.EntryID, fn func() Function) Function {
	c.mu.Lock()
	if r, ok := c.entries[id]; ok {
		c.mu.Unlock()
		return r.fn
	}
	c.mu.Unlock()

	diag.Logf("step: cache miss for %s\n", id)
	computed := fn()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = &sharedResult{fn: computed}
	return computed
}

// Invalidate drops a cached entry, for callers that mutate State between
// queries in a long-running process (tests only; a served State is
// otherwise immutable for its lifetime).
func (c *Cache) Invalidate(id ids.EntryID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}
