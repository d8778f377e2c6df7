package cache

import (
	"context"
	"time"
)

// Cache is the Redis-backed surface the server and worker share: job status
// snapshots for pollers (short TTL via SetWithTTL), cancellation flags the
// pipeline checks at stage boundaries (Exists), and rendered caption tracks
// keyed by track id. Keys are built with the helpers in redis.go.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
