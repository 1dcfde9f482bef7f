package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/weather-news-aggregation/internal/content"
)

// DefaultCapacity is the soft bound on cached aggregation results.
const DefaultCapacity = 50

// ErrInvalidTTL is returned by Set for a non-positive lifetime.
var ErrInvalidTTL = errors.New("ttl must be positive")

type entry struct {
	data     content.Result
	storedAt time.Time
	ttl      time.Duration
}

// TieredCache is a concurrency-safe in-memory result cache whose entries carry
// their own TTL. Expired entries are dropped when read. When full, the oldest
// inserted entry is evicted to make room.
type TieredCache struct {
	mu sync.Mutex

	entries map[string]*entry
	order   []string // keys, oldest insertion first

	capacity int
	now      func() time.Time
}

// NewTieredCache creates a TieredCache. capacity <= 0 uses DefaultCapacity;
// a nil clock uses time.Now.
func NewTieredCache(capacity int, now func() time.Time) *TieredCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &TieredCache{
		entries:  make(map[string]*entry),
		capacity: capacity,
		now:      now,
	}
}

// Get returns a copy of the live result stored under key, or content.ErrCacheMiss.
func (c *TieredCache) Get(key string) (content.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return content.Result{}, content.ErrCacheMiss
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		c.remove(key)
		return content.Result{}, content.ErrCacheMiss
	}
	return e.data.Clone(), nil
}

// Set stores a copy of result under key for ttl. Re-setting a key moves it to
// the newest position.
func (c *TieredCache) Set(key string, result content.Result, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	} else if len(c.entries) >= c.capacity && len(c.order) > 0 {
		c.remove(c.order[0])
	}

	c.entries[key] = &entry{
		data:     result.Clone(),
		storedAt: c.now(),
		ttl:      ttl,
	}
	c.order = append(c.order, key)
	return nil
}

// TTL returns the lifetime recorded for key, whether or not it has expired.
func (c *TieredCache) TTL(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return e.ttl, true
}

// Len returns the number of stored entries, expired ones included.
func (c *TieredCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// remove deletes key from both indexes. The caller holds c.mu.
func (c *TieredCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
