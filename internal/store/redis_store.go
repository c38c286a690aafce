package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	routePrefix     = "skywidget:hips:route:"
	processedPrefix = "skywidget:processed:"
	ackPrefix       = "skywidget:ack:"
)

type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(addr string) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr}))
}

func NewRedisStoreFromClient(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// SetRoute stores the mapping without expiry.
func (r *RedisStore) SetRoute(ctx context.Context, route, dir string) error {
	return r.client.Set(ctx, routePrefix+route, dir, 0).Err()
}

func (r *RedisStore) GetRoute(ctx context.Context, route string) (string, error) {
	return r.get(ctx, routePrefix+route)
}

func (r *RedisStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Exists(ctx, processedPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RedisStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) error {
	return r.client.Set(ctx, processedPrefix+key, "1", ttl).Err()
}

func (r *RedisStore) MarkProcessedIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, processedPrefix+key, "1", ttl).Result()
}

func (r *RedisStore) UnmarkProcessed(ctx context.Context, key string) error {
	return r.client.Del(ctx, processedPrefix+key).Err()
}

func (r *RedisStore) SetAckStatus(ctx context.Context, msgID, status string, ttl time.Duration) error {
	return r.client.Set(ctx, ackPrefix+msgID, status, ttl).Err()
}

func (r *RedisStore) GetAckStatus(ctx context.Context, msgID string) (string, error) {
	return r.get(ctx, ackPrefix+msgID)
}

func (r *RedisStore) get(ctx context.Context, key string) (string, error) {
	result, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return result, err
}
