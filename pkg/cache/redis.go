package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps entries in Redis under a key prefix. Retention bounds how
// long Redis keeps an entry and should exceed any freshness window callers
// apply, so stale entries remain readable.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps client. A zero retention keeps entries indefinitely.
func NewRedisStore(client redis.UniversalClient, prefix string, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, retention: retention}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, s.retention).Err()
}

func (s *RedisStore) Purge(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
