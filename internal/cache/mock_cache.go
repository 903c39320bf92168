package cache

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockCache records model response lookups and writes for tests of
// model.CachedTransport.
type MockCache struct {
	mock.Mock
}

// GetResponse returns the bytes set with Return, or nil for a miss.
func (m *MockCache) GetResponse(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) SetResponse(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}
