package cache

import (
	"context"
	"time"
)

// NoOpCache never stores a model response, so every lookup misses and each
// request reaches the model backend. It backs CACHE_PROVIDER=none.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetResponse reports a miss.
func (c *NoOpCache) GetResponse(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

// SetResponse discards the response.
func (c *NoOpCache) SetResponse(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
