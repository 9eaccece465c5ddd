// Package service wires the platform clients, caches and stores into the
// operations exposed by the API: pool analytics, trade bundle building, and
// order management.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/analytics"
	"github.com/lantern-fi/suipool/internal/domain"
)

// PoolFetcher is the slice of the fullnode client the pool service needs.
type PoolFetcher interface {
	GetPool(ctx context.Context, poolID string) (*domain.Pool, error)
	CoinMetadata(ctx context.Context, coinType domain.CoinType) (*domain.CoinMeta, error)
}

// PoolStats is a pool snapshot with its derived valuation figures.
type PoolStats struct {
	Pool         *domain.Pool
	TVL          sdkmath.LegacyDec
	LPSharePrice sdkmath.LegacyDec
}

// PoolService answers pool analytics queries: snapshots, TVL, LP share
// price, trade volume and time-bucketed volume series.
type PoolService struct {
	rpc       PoolFetcher
	prices    domain.PriceCache
	metadata  domain.MetadataCache
	events    domain.EventStore
	analytics *analytics.Engine
	logger    *slog.Logger
}

// NewPoolService creates a PoolService with all required dependencies.
func NewPoolService(
	rpc PoolFetcher,
	prices domain.PriceCache,
	metadata domain.MetadataCache,
	events domain.EventStore,
	engine *analytics.Engine,
	logger *slog.Logger,
) *PoolService {
	return &PoolService{
		rpc:       rpc,
		prices:    prices,
		metadata:  metadata,
		events:    events,
		analytics: engine,
		logger:    logger.With(slog.String("component", "pool_service")),
	}
}

// GetPool returns the live pool snapshot from the fullnode.
func (s *PoolService) GetPool(ctx context.Context, poolID string) (*domain.Pool, error) {
	pool, err := s.rpc.GetPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("pool_service: get pool %s: %w", poolID, err)
	}
	return pool, nil
}

// Stats returns the pool snapshot together with its TVL and LP share price.
func (s *PoolService) Stats(ctx context.Context, poolID string) (*PoolStats, error) {
	pool, err := s.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	coins := pool.CoinTypes()
	prices, err := s.priceMap(ctx, coins)
	if err != nil {
		return nil, err
	}
	decimals, err := s.decimalsMap(ctx, coins)
	if err != nil {
		return nil, err
	}

	tvl, err := s.analytics.TVL(pool.Reserves, prices, decimals)
	if err != nil {
		return nil, fmt.Errorf("pool_service: tvl %s: %w", poolID, err)
	}

	lpDecimals, err := s.decimalsFor(ctx, pool.LPCoinType)
	if err != nil {
		return nil, err
	}
	lpPrice, err := s.analytics.LPSharePrice(pool.LPSupply, lpDecimals, tvl)
	if err != nil {
		return nil, fmt.Errorf("pool_service: lp share price %s: %w", poolID, err)
	}

	return &PoolStats{Pool: pool, TVL: tvl, LPSharePrice: lpPrice}, nil
}

// Volume returns the pool's USD trade volume over [since, until].
func (s *PoolService) Volume(ctx context.Context, poolID string, since, until time.Time) (sdkmath.LegacyDec, error) {
	pool, err := s.GetPool(ctx, poolID)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}

	coins := pool.CoinTypes()
	prices, decimals, err := s.pricingArrays(ctx, coins)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}

	events, err := s.events.ListTradesByPool(ctx, poolID, domain.ListOpts{Since: &since, Until: &until})
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("pool_service: list trades %s: %w", poolID, err)
	}

	vol, err := s.analytics.Volume(poolID, coins, prices, decimals, events)
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("pool_service: volume %s: %w", poolID, err)
	}
	return vol, nil
}

// VolumeSeries returns the pool's USD trade volume bucketed per spec,
// oldest bucket first.
func (s *PoolService) VolumeSeries(ctx context.Context, poolID string, spec analytics.SeriesSpec) ([]domain.PoolDataPoint, error) {
	pool, err := s.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	coins := pool.CoinTypes()
	prices, decimals, err := s.pricingArrays(ctx, coins)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	windowStart := now.Add(-time.Duration(spec.TimeSpan) * spec.TimeUnit)
	events, err := s.events.ListTradesByPool(ctx, poolID, domain.ListOpts{Since: &windowStart})
	if err != nil {
		return nil, fmt.Errorf("pool_service: list trades %s: %w", poolID, err)
	}

	points, err := s.analytics.VolumeSeries(now, poolID, coins, prices, decimals, events, spec)
	if err != nil {
		return nil, fmt.Errorf("pool_service: volume series %s: %w", poolID, err)
	}
	return points, nil
}

// priceMap fetches prices for the given coins from the cache. Every pool
// coin must be priced; a gap fails the query rather than silently skewing
// the valuation.
func (s *PoolService) priceMap(ctx context.Context, coins []domain.CoinType) (map[domain.CoinType]sdkmath.LegacyDec, error) {
	prices, err := s.prices.GetPrices(ctx, coins)
	if err != nil {
		return nil, fmt.Errorf("pool_service: get prices: %w", err)
	}
	for _, coin := range coins {
		if _, ok := prices[coin]; !ok {
			return nil, fmt.Errorf("pool_service: %s: %w", coin, domain.ErrPriceNotFound)
		}
	}
	return prices, nil
}

// pricingArrays builds the co-indexed price array and the decimals map the
// analytics engine consumes.
func (s *PoolService) pricingArrays(ctx context.Context, coins []domain.CoinType) ([]sdkmath.LegacyDec, map[domain.CoinType]uint8, error) {
	priceMap, err := s.priceMap(ctx, coins)
	if err != nil {
		return nil, nil, err
	}
	prices := make([]sdkmath.LegacyDec, len(coins))
	for i, coin := range coins {
		prices[i] = priceMap[coin]
	}

	decimals, err := s.decimalsMap(ctx, coins)
	if err != nil {
		return nil, nil, err
	}
	return prices, decimals, nil
}

func (s *PoolService) decimalsMap(ctx context.Context, coins []domain.CoinType) (map[domain.CoinType]uint8, error) {
	out := make(map[domain.CoinType]uint8, len(coins))
	for _, coin := range coins {
		dec, err := s.decimalsFor(ctx, coin)
		if err != nil {
			return nil, err
		}
		out[coin] = dec
	}
	return out, nil
}

// decimalsFor resolves a coin's decimals, cache first with a fullnode
// metadata fallback. Cache write failures are logged, not fatal.
func (s *PoolService) decimalsFor(ctx context.Context, coin domain.CoinType) (uint8, error) {
	dec, err := s.metadata.GetDecimals(ctx, coin)
	if err == nil {
		return dec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "pool_service: metadata cache read failed",
			slog.String("coin_type", string(coin)),
			slog.String("error", err.Error()),
		)
	}

	meta, err := s.rpc.CoinMetadata(ctx, coin)
	if err != nil {
		return 0, fmt.Errorf("pool_service: coin metadata %s: %w", coin, err)
	}

	if cacheErr := s.metadata.SetDecimals(ctx, coin, meta.Decimals); cacheErr != nil {
		s.logger.WarnContext(ctx, "pool_service: metadata cache write failed",
			slog.String("coin_type", string(coin)),
			slog.String("error", cacheErr.Error()),
		)
	}
	return meta.Decimals, nil
}
