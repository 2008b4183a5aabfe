// Package seen provides in-process idempotency tracking for processed
// (category, timestamp) keys. It is only a fast path in front of the
// repository existence check; the storage uniqueness constraint remains the
// final arbiter.
package seen

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// Cache records processed round keys so a re-invoked round can skip work it
// already did without a storage round trip.
type Cache interface {
	// SeenAndRecord atomically checks whether the key was seen and records
	// it if not. Returns true if the key was already seen.
	SeenAndRecord(ctx context.Context, cat scores.Category, ts time.Time) bool

	// Unrecord removes a key, allowing the round to be retried. Use it when
	// a category was marked seen but its snapshot failed to persist.
	Unrecord(ctx context.Context, cat scores.Category, ts time.Time)

	// Size returns the number of keys currently recorded.
	Size() int
}

// inMemoryCache implements Cache with a plain mutex-guarded map. The key
// space is bounded by eight categories times the distinct timestamps a
// single process lifetime can observe, so no eviction is needed.
type inMemoryCache struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// NewInMemoryCache creates an empty in-process cache.
func NewInMemoryCache() Cache {
	return &inMemoryCache{keys: make(map[string]struct{})}
}

func (c *inMemoryCache) SeenAndRecord(_ context.Context, cat scores.Category, ts time.Time) bool {
	k := key(cat, ts)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.keys[k]; ok {
		return true
	}
	c.keys[k] = struct{}{}
	return false
}

func (c *inMemoryCache) Unrecord(_ context.Context, cat scores.Category, ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, key(cat, ts))
}

func (c *inMemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

func key(cat scores.Category, ts time.Time) string {
	return cat.String() + "@" + strconv.FormatInt(ts.Unix(), 10)
}
