package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/redis/go-redis/v9"

	"github.com/lantern-fi/suipool/internal/domain"
)

// PriceCache implements domain.PriceCache using Redis hashes.
// Each coin's USD price is stored as a hash at key "price:{coinType}" with
// fields "price" (decimal string, full precision) and "ts" (Unix nanosecond
// timestamp).
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.Redis()}
}

func priceKey(coin domain.CoinType) string {
	return "price:" + string(coin)
}

// SetPrice stores the latest price and timestamp for a coin type.
func (pc *PriceCache) SetPrice(ctx context.Context, coin domain.CoinType, price sdkmath.LegacyDec, ts time.Time) error {
	key := priceKey(coin)
	fields := map[string]interface{}{
		"price": price.String(),
		"ts":    strconv.FormatInt(ts.UnixNano(), 10),
	}
	if err := pc.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("redis: set price %s: %w", coin, err)
	}
	return nil
}

// GetPrice retrieves the latest price and timestamp for a coin type.
// It returns domain.ErrNotFound when the key does not exist.
func (pc *PriceCache) GetPrice(ctx context.Context, coin domain.CoinType) (sdkmath.LegacyDec, time.Time, error) {
	key := priceKey(coin)
	vals, err := pc.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return sdkmath.LegacyDec{}, time.Time{}, fmt.Errorf("redis: get price %s: %w", coin, err)
	}
	if len(vals) == 0 {
		return sdkmath.LegacyDec{}, time.Time{}, domain.ErrNotFound
	}

	priceStr, ok := vals["price"]
	if !ok {
		return sdkmath.LegacyDec{}, time.Time{}, domain.ErrNotFound
	}
	price, err := sdkmath.LegacyNewDecFromStr(priceStr)
	if err != nil {
		return sdkmath.LegacyDec{}, time.Time{}, fmt.Errorf("redis: parse price %s: %w", coin, err)
	}

	tsStr, ok := vals["ts"]
	if !ok {
		return sdkmath.LegacyDec{}, time.Time{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return sdkmath.LegacyDec{}, time.Time{}, fmt.Errorf("redis: parse ts %s: %w", coin, err)
	}

	return price, time.Unix(0, tsNano), nil
}

// GetPrices retrieves the latest prices for multiple coins using a pipeline.
// Coins whose keys do not exist are silently omitted from the result map.
func (pc *PriceCache) GetPrices(ctx context.Context, coins []domain.CoinType) (map[domain.CoinType]sdkmath.LegacyDec, error) {
	if len(coins) == 0 {
		return map[domain.CoinType]sdkmath.LegacyDec{}, nil
	}

	pipe := pc.rdb.Pipeline()
	cmds := make(map[domain.CoinType]*redis.MapStringStringCmd, len(coins))
	for _, coin := range coins {
		cmds[coin] = pipe.HGetAll(ctx, priceKey(coin))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: get prices pipeline: %w", err)
	}

	result := make(map[domain.CoinType]sdkmath.LegacyDec, len(coins))
	for coin, cmd := range cmds {
		vals, err := cmd.Result()
		if err != nil {
			continue
		}
		if len(vals) == 0 {
			continue
		}
		priceStr, ok := vals["price"]
		if !ok {
			continue
		}
		price, err := sdkmath.LegacyNewDecFromStr(priceStr)
		if err != nil {
			continue
		}
		result[coin] = price
	}

	return result, nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)
