package preference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores one visitor's values in a Redis hash.
type RedisBackend struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisBackend binds a backend to the hash prefix+visitorID.
func NewRedisBackend(client redis.Cmdable, prefix, visitorID string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, key: prefix + visitorID, ttl: ttl}
}

// Key returns the hash key holding the visitor's values.
func (b *RedisBackend) Key() string { return b.key }

func (b *RedisBackend) Get(ctx context.Context, field string) (string, error) {
	v, err := b.client.HGet(ctx, b.key, field).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("preference: redis hget %s: %w", field, err)
	}
	return v, nil
}

func (b *RedisBackend) Set(ctx context.Context, field, value string) error {
	_, err := b.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, b.key, field, value)
		if b.ttl > 0 {
			p.Expire(ctx, b.key, b.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("preference: redis hset %s: %w", field, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := b.client.HDel(ctx, b.key, fields...).Err(); err != nil {
		return fmt.Errorf("preference: redis hdel: %w", err)
	}
	return nil
}
