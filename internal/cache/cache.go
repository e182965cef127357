package cache

import (
	"context"
	"time"
)

// Cache is the advisory key/value accelerator in front of the document store.
// Losing it (or its contents) costs performance, never correctness: every
// entry is reconstructable from the store.
type Cache interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPrefix removes every key under the given namespace prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
	// Available reports whether the backing store is reachable right now.
	Available(ctx context.Context) bool
}
