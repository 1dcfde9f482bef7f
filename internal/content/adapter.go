package content

import (
	"context"
	"errors"
	"time"
)

// Adapter abstracts a content provider (e.g. NWS alerts, an RSS feed, SWPC bulletins).
// Fetch returns normalized items or an error; an empty slice with a nil error
// means the provider had nothing to offer.
type Adapter interface {
	Name() string
	Group() SourceGroup
	Categories() []Category
	Fetch(ctx context.Context, limit int) ([]Item, error)
}

// ErrCacheMiss is returned by a Cache when no live entry exists for a key.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the contract the tiered result cache must satisfy.
type Cache interface {
	Get(key string) (Result, error)
	Set(key string, result Result, ttl time.Duration) error
}
