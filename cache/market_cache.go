package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tezbeat/model"

	"github.com/go-redis/redis/v8"
)

// MarketDataTTL is how long a cached marketplace snapshot stays fresh.
// Listings move slowly enough that a few minutes of staleness is fine.
const MarketDataTTL = 5 * time.Minute

// GetMarketKey builds the Redis key for a token's marketplace snapshot.
func GetMarketKey(trackID string) string {
	return fmt.Sprintf("tezbeat:market:%s", trackID)
}

// CacheMarketData stores a marketplace snapshot with a TTL.
func CacheMarketData(ctx context.Context, data *model.MarketData) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	blob, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal market data: %w", err)
	}

	err = RedisClient.Set(ctx, GetMarketKey(data.TrackID), blob, MarketDataTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache market data: %w", err)
	}
	return nil
}

// GetMarketData returns the cached snapshot for a token, or nil when the
// cache has no fresh entry.
func GetMarketData(ctx context.Context, trackID string) (*model.MarketData, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}

	blob, err := RedisClient.Get(ctx, GetMarketKey(trackID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get market data: %w", err)
	}

	var data model.MarketData
	if err := json.Unmarshal(blob, &data); err != nil {
		// stale or corrupt entry, drop it and refetch
		RedisClient.Del(ctx, GetMarketKey(trackID))
		return nil, nil
	}
	return &data, nil
}

// InvalidateMarketData drops the cached snapshot for a token.
func InvalidateMarketData(ctx context.Context, trackID string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Del(ctx, GetMarketKey(trackID)).Err()
}
