package domain

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
)

// PriceCache provides current USD prices per coin type. Implementations are
// populated by an external price feeder; the analytics layer only reads.
type PriceCache interface {
	// SetPrice stores the latest price and its observation time.
	SetPrice(ctx context.Context, coin CoinType, price sdkmath.LegacyDec, ts time.Time) error

	// GetPrice returns the latest price and its observation time, or
	// ErrNotFound when no price has been stored.
	GetPrice(ctx context.Context, coin CoinType) (sdkmath.LegacyDec, time.Time, error)

	// GetPrices returns prices for multiple coins. Coins with no stored
	// price are omitted from the result map.
	GetPrices(ctx context.Context, coins []CoinType) (map[CoinType]sdkmath.LegacyDec, error)
}

// MetadataCache caches per-coin decimal metadata fetched from the fullnode.
type MetadataCache interface {
	SetDecimals(ctx context.Context, coin CoinType, decimals uint8) error

	// GetDecimals returns ErrNotFound when the coin has not been cached.
	GetDecimals(ctx context.Context, coin CoinType) (uint8, error)
}

// RateLimiter limits operations per key over a sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
