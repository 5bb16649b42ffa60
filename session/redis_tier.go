package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps connectivity failures from [RedisTier].
var ErrRedisUnavailable = errors.New("session redis tier unavailable")

// RedisTier is a durable Tier backed by Redis, for deployments where several
// headless agents share one authenticated session (for example a fleet of
// schedulers pulling from the same planner account). Single-machine clients
// should prefer [FileTier].
type RedisTier struct {
	client *redis.Client
	prefix string
}

// NewRedisTier returns a Redis-backed tier. All keys are stored under
// prefix + ":" to keep the session namespace separate from other users of
// the same database.
func NewRedisTier(client *redis.Client, prefix string) *RedisTier {
	if prefix == "" {
		prefix = "authflow"
	}
	return &RedisTier{client: client, prefix: prefix}
}

func (t *RedisTier) key(key string) string {
	return t.prefix + ":" + key
}

func (t *RedisTier) Get(ctx context.Context, key string) (string, error) {
	value, err := t.client.Get(ctx, t.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return value, nil
}

func (t *RedisTier) Set(ctx context.Context, key, value string) error {
	if err := t.client.Set(ctx, t.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (t *RedisTier) Delete(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = t.key(key)
	}
	if err := t.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
