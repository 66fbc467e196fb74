// Package cache stores fetched point spreads in Redis, keyed by matchup, so
// process restarts don't re-spend odds-provider budget on lines we already
// hold.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const spreadKeyPrefix = "madness:spread:"

// SpreadCache is a Redis-backed spread cache. A nil *SpreadCache is valid
// and behaves as always-miss, so the engine runs unchanged without Redis.
type SpreadCache struct {
	client *redis.Client
}

// NewSpreadCache connects to Redis by URL and verifies the connection.
func NewSpreadCache(redisURL string) (*SpreadCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &SpreadCache{client: client}, nil
}

// Close closes the Redis connection.
func (sc *SpreadCache) Close() error {
	if sc == nil {
		return nil
	}
	return sc.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (sc *SpreadCache) HealthCheck(ctx context.Context) error {
	if sc == nil {
		return nil
	}
	return sc.client.Ping(ctx).Err()
}

// GetSpread returns the cached spread for a matchup key, or ok=false on a
// miss (or any Redis/decoding trouble; a broken cache must read as a miss).
func (sc *SpreadCache) GetSpread(ctx context.Context, matchup string) (map[string]float64, bool) {
	if sc == nil {
		return nil, false
	}
	val, err := sc.client.Get(ctx, spreadKeyPrefix+matchup).Result()
	if err != nil {
		return nil, false
	}
	var spread map[string]float64
	if err := json.Unmarshal([]byte(val), &spread); err != nil {
		return nil, false
	}
	if len(spread) == 0 {
		return nil, false
	}
	return spread, true
}

// PutSpread caches a fetched spread without expiry; teams meet at most once,
// so a matchup's line never needs invalidation. Empty spreads are not
// cached.
func (sc *SpreadCache) PutSpread(ctx context.Context, matchup string, spread map[string]float64) error {
	if sc == nil || len(spread) == 0 {
		return nil
	}
	data, err := json.Marshal(spread)
	if err != nil {
		return err
	}
	return sc.client.Set(ctx, spreadKeyPrefix+matchup, data, 0).Err()
}
