package model

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"doc-quiz/internal/cache"
)

// CachedTransport serves repeated identical requests from a cache. Cache
// failures are logged and bypassed; they never fail a request.
type CachedTransport struct {
	next  Transport
	cache cache.Cache
	ttl   time.Duration
	scope string
	log   *slog.Logger
}

// NewCachedTransport wraps next. scope namespaces keys, e.g. by provider and
// model ids, so different backends never share entries.
func NewCachedTransport(next Transport, c cache.Cache, ttl time.Duration, scope string, log *slog.Logger) *CachedTransport {
	return &CachedTransport{next: next, cache: c, ttl: ttl, scope: scope, log: log}
}

func (t *CachedTransport) Send(ctx context.Context, endpoint Endpoint, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return t.next.Send(ctx, endpoint, payload)
	}
	key := cache.GenerateCacheKey(t.scope, string(endpoint), string(body))

	cached, err := t.cache.GetResponse(ctx, key)
	if err != nil {
		t.log.Warn("model cache read failed", "endpoint", endpoint, "err", err)
	} else if cached != nil {
		t.log.Debug("model cache hit", "endpoint", endpoint)
		return json.RawMessage(cached), nil
	}

	res, err := t.next.Send(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}
	if err := t.cache.SetResponse(ctx, key, res, t.ttl); err != nil {
		t.log.Warn("model cache write failed", "endpoint", endpoint, "err", err)
	}
	return res, nil
}
