package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lantern-fi/suipool/internal/domain"
)

// metadataTTL bounds staleness in case a coin's metadata object is ever
// upgraded on chain. Decimals effectively never change, so a long TTL is fine.
const metadataTTL = 24 * time.Hour

// MetadataCache implements domain.MetadataCache using plain Redis strings at
// key "decimals:{coinType}".
type MetadataCache struct {
	rdb *redis.Client
}

// NewMetadataCache creates a MetadataCache backed by the given Client.
func NewMetadataCache(c *Client) *MetadataCache {
	return &MetadataCache{rdb: c.Redis()}
}

func decimalsKey(coin domain.CoinType) string {
	return "decimals:" + string(coin)
}

// SetDecimals stores the coin's decimal count.
func (mc *MetadataCache) SetDecimals(ctx context.Context, coin domain.CoinType, decimals uint8) error {
	if err := mc.rdb.Set(ctx, decimalsKey(coin), int(decimals), metadataTTL).Err(); err != nil {
		return fmt.Errorf("redis: set decimals %s: %w", coin, err)
	}
	return nil
}

// GetDecimals returns the cached decimal count, or domain.ErrNotFound when
// the coin has not been cached.
func (mc *MetadataCache) GetDecimals(ctx context.Context, coin domain.CoinType) (uint8, error) {
	val, err := mc.rdb.Get(ctx, decimalsKey(coin)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis: get decimals %s: %w", coin, err)
	}

	n, err := strconv.ParseUint(val, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("redis: parse decimals %s: %w", coin, err)
	}
	return uint8(n), nil
}

// Compile-time interface check.
var _ domain.MetadataCache = (*MetadataCache)(nil)
