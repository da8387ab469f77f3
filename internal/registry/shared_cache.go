package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/ilodestar/aiops-naas/internal/tracking"
)

// RedisSharedCache is the optional cross-replica second tier backing
// SharedCache, so multiple detector/enricher replicas resolving the same
// hostnames share positive registry lookups. Adapted from
// pkg/cache/valkey_single.go's single-node client setup, trimmed to the
// plain get/set this client needs (no sessions, no locks).
type RedisSharedCache struct {
	client *redis.Client
	ttl    time.Duration
	logger tracking.Logger
}

// NewRedisSharedCache dials addr and verifies connectivity with a 5s
// ping, mirroring NewValkeySingle's startup check.
func NewRedisSharedCache(addr string, ttl time.Duration, logger tracking.Logger) (*RedisSharedCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &RedisSharedCache{client: client, ttl: ttl, logger: logger}, nil
}

func sharedCacheKey(hostname string) string {
	return "registry:mapping:" + hostname
}

// Get satisfies registry.SharedCache.
func (r *RedisSharedCache) Get(ctx context.Context, hostname string) (Mapping, bool) {
	b, err := r.client.Get(ctx, sharedCacheKey(hostname)).Bytes()
	if err != nil {
		return Mapping{}, false
	}
	var m Mapping
	if err := json.Unmarshal(b, &m); err != nil {
		return Mapping{}, false
	}
	return m, true
}

// Set satisfies registry.SharedCache. Errors are logged, not returned:
// the shared tier is a pure optimization, never required for Resolve to
// make progress.
func (r *RedisSharedCache) Set(ctx context.Context, hostname string, mapping Mapping) {
	b, err := json.Marshal(mapping)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, sharedCacheKey(hostname), b, r.ttl).Err(); err != nil {
		if r.logger != nil {
			r.logger.Warn("shared registry cache write failed", "hostname", hostname, "error", err)
		}
	}
}

// Close releases the underlying connection pool.
func (r *RedisSharedCache) Close() error {
	return r.client.Close()
}
