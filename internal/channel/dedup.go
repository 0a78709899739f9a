package channel

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore remembers processed message ids so mailbox re-fetches stay
// idempotent.
type DedupStore interface {
	// MarkSeen records the id and reports whether this was its first
	// sighting.
	MarkSeen(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// RedisDedup implements DedupStore on Redis SET NX.
type RedisDedup struct {
	client *redis.Client
}

// NewRedisDedup creates a Redis-backed dedup store.
func NewRedisDedup(client *redis.Client) *RedisDedup {
	return &RedisDedup{client: client}
}

func (d *RedisDedup) MarkSeen(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	return d.client.SetNX(ctx, "mail:seen:"+id, 1, ttl).Result()
}
