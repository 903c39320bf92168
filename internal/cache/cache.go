package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache stores raw model responses keyed by request fingerprint.
type Cache interface {
	// GetResponse returns the raw endpoint response stored under key, or nil
	// on a miss.
	GetResponse(ctx context.Context, key string) ([]byte, error)

	// SetResponse stores a successful endpoint response for ttl.
	SetResponse(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases the backing connection.
	Close() error
}

// GenerateCacheKey fingerprints the given parts into a fixed-length key.
func GenerateCacheKey(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
