package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sm8ta/users_crud_service/internal/config"
	"github.com/sm8ta/users_crud_service/internal/core/ports"
)

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = ports.ErrCacheMiss

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) ports.CachePort {
	return &RedisAdapter{
		client: client,
	}
}

// Connect dials Redis and pings it. An empty address yields a no-op cache.
func Connect(ctx context.Context, cfg *config.Redis) (ports.CachePort, error) {
	if cfg.Address == "" {
		return NopCache{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}

	return NewRedisAdapter(client), nil
}

func (r *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	return result, nil
}

func (r *RedisAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisAdapter) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) Close() error {
	return r.client.Close()
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, error) { return nil, ErrCacheMiss }
func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, string) error { return nil }
func (NopCache) Close() error { return nil }

var (
	_ ports.CachePort = (*RedisAdapter)(nil)
	_ ports.CachePort = NopCache{}
)
