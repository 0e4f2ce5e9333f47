package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wikistats/shorturls/internal/errx"
)

// keyPrefix namespaces our entries on a shared Redis instance.
const keyPrefix = "shorturls:"

// RedisStore is the optional hot cache layered in front of the file store.
// Entries expire after a TTL; that is fine because the file store remains
// authoritative and a Redis miss just costs one disk read.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed snapshot store.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Get reads the snapshot cached under key. Expired or absent keys are a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (Snapshot, bool, error) {
	const op = "stats.RedisStore.Get"

	raw, err := s.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, errx.E(op, errx.Unavailable, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt hot-cache entry is recoverable: report a miss so the
		// caller falls through to the file store.
		return Snapshot{}, false, nil
	}
	return snap, true, nil
}

// Put caches the snapshot under key with the configured TTL.
func (s *RedisStore) Put(ctx context.Context, key string, snap Snapshot) error {
	const op = "stats.RedisStore.Put"

	raw, err := json.Marshal(snap)
	if err != nil {
		return errx.E(op, errx.Internal, err)
	}

	if err := s.rdb.Set(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return errx.E(op, errx.Unavailable, fmt.Errorf("set %s: %w", key, err))
	}
	return nil
}
