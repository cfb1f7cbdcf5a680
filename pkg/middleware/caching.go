package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/digitallysavvy/go-ai-mediator/pkg/ir"
)

// CacheStore is the storage interface Caching middleware relies on. A
// host application can back this with Redis (see pkg/config for the
// go-redis client wiring) for a multi-process cache, or use
// NewMapCacheStore for a single-process in-memory cache.
type CacheStore interface {
	Get(ctx context.Context, key string) (ir.ChatResponse, bool)
	Set(ctx context.Context, key string, resp ir.ChatResponse, ttl time.Duration)
}

type cacheEntry struct {
	resp    ir.ChatResponse
	expires time.Time
}

// MapCacheStore is a sync.RWMutex-guarded in-memory CacheStore.
type MapCacheStore struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewMapCacheStore() *MapCacheStore {
	return &MapCacheStore{entries: make(map[string]cacheEntry)}
}

func (m *MapCacheStore) Get(ctx context.Context, key string) (ir.ChatResponse, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expires) {
		return ir.ChatResponse{}, false
	}
	return e.resp, true
}

func (m *MapCacheStore) Set(ctx context.Context, key string, resp ir.ChatResponse, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cacheEntry{resp: resp, expires: time.Now().Add(ttl)}
}

// Caching short-circuits requests that deterministically repeat an
// already-served request (same messages, same parameters, Temperature
// at or near zero). It never caches streaming requests, since a cache
// hit would have to fabricate a plausible chunk sequence.
type Caching struct {
	Store CacheStore
	TTL   time.Duration
	// KeyFunc computes a cache key for a request. Defaults to
	// fingerprinting Messages and Parameters as JSON.
	KeyFunc func(ir.ChatRequest) string
}

func NewCaching(store CacheStore, ttl time.Duration) *Caching {
	return &Caching{Store: store, TTL: ttl, KeyFunc: fingerprintRequest}
}

func (c *Caching) Name() string { return "caching" }

func (c *Caching) WrapHandler(next Handler) Handler {
	return func(ctx context.Context, req ir.ChatRequest) (ir.ChatResponse, error) {
		if !c.cacheable(req) {
			return next(ctx, req)
		}
		key := c.keyFor(req)
		if resp, ok := c.Store.Get(ctx, key); ok {
			resp.Metadata.Custom = mergedCustom(resp.Metadata.Custom, map[string]any{"cache_hit": true})
			return resp, nil
		}
		resp, err := next(ctx, req)
		if err != nil {
			return resp, err
		}
		c.Store.Set(ctx, key, resp, c.TTL)
		return resp, nil
	}
}

// WrapStreamHandler passes streaming requests through unchanged.
func (c *Caching) WrapStreamHandler(next StreamHandler) StreamHandler {
	return next
}

func (c *Caching) cacheable(req ir.ChatRequest) bool {
	if req.Parameters == nil {
		return true
	}
	return req.Parameters.Temperature == nil || *req.Parameters.Temperature <= 0.01
}

func (c *Caching) keyFor(req ir.ChatRequest) string {
	if c.KeyFunc != nil {
		return c.KeyFunc(req)
	}
	return fingerprintRequest(req)
}

func fingerprintRequest(req ir.ChatRequest) string {
	b, _ := json.Marshal(struct {
		Messages   []ir.Message
		Parameters *ir.Parameters
	}{req.Messages, req.Parameters})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// RedisCacheStore backs Caching with a shared Redis instance, so a
// cache hit in one process is visible to every other process behind
// the same mediation layer. Responses are marshaled as JSON; the TTL
// passed to Set becomes the key's Redis expiry.
type RedisCacheStore struct {
	client *redis.Client
}

// NewRedisCacheStore builds a RedisCacheStore over an existing client.
// The caller owns the client's lifecycle (including Close).
func NewRedisCacheStore(client *redis.Client) *RedisCacheStore {
	return &RedisCacheStore{client: client}
}

func (r *RedisCacheStore) Get(ctx context.Context, key string) (ir.ChatResponse, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return ir.ChatResponse{}, false
	}
	var resp ir.ChatResponse
	if err := json.Unmarshal([]byte(val), &resp); err != nil {
		return ir.ChatResponse{}, false
	}
	return resp, true
}

func (r *RedisCacheStore) Set(ctx context.Context, key string, resp ir.ChatResponse, ttl time.Duration) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, key, data, ttl).Err()
}

func mergedCustom(base map[string]any, add map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(add))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range add {
		out[k] = v
	}
	return out
}
