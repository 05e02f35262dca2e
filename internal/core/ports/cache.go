package ports

import (
	"context"
	"time"
)

// Cache is a minimal key-value contract used to front the token store.
// Implementations should degrade gracefully so callers can fall back to the
// primary store on error.
type Cache interface {
	// Get returns the raw bytes for key. ok=false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}
