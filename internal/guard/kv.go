package guard

import (
	"context"
	"time"
)

// Store is the minimal key/value surface the guards need. The redis-backed
// implementation is used in deployments; the in-memory one serves local runs
// and tests. All guards treat store failures as availability problems, not
// correctness problems, and each guard documents its own failure posture.
type Store interface {
	// IncrWindow atomically increments key and, when this increment created
	// the key, arms its expiry. Returns the post-increment count.
	IncrWindow(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// SetNX stores value under key only if the key is absent. Returns true
	// when this call won the key.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	// DelIfEquals deletes key only while it still holds value, atomically.
	// Returns true when this call performed the delete.
	DelIfEquals(ctx context.Context, key, value string) (bool, error)
}
