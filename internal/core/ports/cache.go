package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CachePort.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

type CachePort interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
