package service

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/analytics"
	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/pricing"
)

type fakePriceCache struct {
	prices map[domain.CoinType]sdkmath.LegacyDec
}

func (f *fakePriceCache) SetPrice(_ context.Context, coin domain.CoinType, price sdkmath.LegacyDec, _ time.Time) error {
	f.prices[coin] = price
	return nil
}

func (f *fakePriceCache) GetPrice(_ context.Context, coin domain.CoinType) (sdkmath.LegacyDec, time.Time, error) {
	p, ok := f.prices[coin]
	if !ok {
		return sdkmath.LegacyDec{}, time.Time{}, domain.ErrNotFound
	}
	return p, time.Now(), nil
}

func (f *fakePriceCache) GetPrices(_ context.Context, coins []domain.CoinType) (map[domain.CoinType]sdkmath.LegacyDec, error) {
	out := map[domain.CoinType]sdkmath.LegacyDec{}
	for _, c := range coins {
		if p, ok := f.prices[c]; ok {
			out[c] = p
		}
	}
	return out, nil
}

type fakeMetadataCache struct {
	decimals map[domain.CoinType]uint8
}

func (f *fakeMetadataCache) SetDecimals(_ context.Context, coin domain.CoinType, d uint8) error {
	f.decimals[coin] = d
	return nil
}

func (f *fakeMetadataCache) GetDecimals(_ context.Context, coin domain.CoinType) (uint8, error) {
	d, ok := f.decimals[coin]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return d, nil
}

type fakeEventStore struct {
	trades []domain.PoolTradeEvent
}

func (f *fakeEventStore) InsertTrades(_ context.Context, events []domain.PoolTradeEvent) error {
	f.trades = append(f.trades, events...)
	return nil
}

func (f *fakeEventStore) ListTradesByPool(_ context.Context, poolID string, opts domain.ListOpts) ([]domain.PoolTradeEvent, error) {
	var out []domain.PoolTradeEvent
	for _, t := range f.trades {
		if t.PoolID != poolID {
			continue
		}
		if opts.Since != nil && t.TimestampMs < opts.Since.UnixMilli() {
			continue
		}
		if opts.Until != nil && t.TimestampMs > opts.Until.UnixMilli() {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeEventStore) ListTradesBefore(_ context.Context, _ time.Time, _ int) ([]domain.PoolTradeEvent, error) {
	return nil, nil
}

func (f *fakeEventStore) DeleteTradesBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeEventStore) LastTimestamp(_ context.Context) (time.Time, error) {
	return time.Time{}, nil
}

func newPoolService(pool *domain.Pool, prices map[domain.CoinType]sdkmath.LegacyDec, events []domain.PoolTradeEvent) *PoolService {
	return NewPoolService(
		&fakePoolFetcher{pool: pool},
		&fakePriceCache{prices: prices},
		&fakeMetadataCache{decimals: map[domain.CoinType]uint8{}},
		&fakeEventStore{trades: events},
		analytics.NewEngine(pricing.NewClassifier("amm_lp"), discard()),
		discard(),
	)
}

func usdPrices() map[domain.CoinType]sdkmath.LegacyDec {
	return map[domain.CoinType]sdkmath.LegacyDec{
		coinSUI:  sdkmath.LegacyMustNewDecFromStr("2.0"),
		coinUSDC: sdkmath.LegacyMustNewDecFromStr("1.0"),
	}
}

func TestStatsComputesTVLAndLPPrice(t *testing.T) {
	// 500 SUI at $2 + 1 USDC at $1 = $1001; 0.001 LP supply at 9 decimals.
	svc := newPoolService(testPool(), usdPrices(), nil)

	stats, err := svc.Stats(context.Background(), "0xp00l")
	require.NoError(t, err)
	assert.Equal(t, "1001.000000000000000000", stats.TVL.String())
	assert.Equal(t, "1001000.000000000000000000", stats.LPSharePrice.String())
}

// The metadata cache starts empty, so decimals must come from the fullnode
// and be backfilled.
func TestStatsBackfillsMetadataCache(t *testing.T) {
	metadata := &fakeMetadataCache{decimals: map[domain.CoinType]uint8{}}
	svc := NewPoolService(
		&fakePoolFetcher{pool: testPool()},
		&fakePriceCache{prices: usdPrices()},
		metadata,
		&fakeEventStore{},
		analytics.NewEngine(pricing.NewClassifier("amm_lp"), discard()),
		discard(),
	)

	_, err := svc.Stats(context.Background(), "0xp00l")
	require.NoError(t, err)
	assert.Equal(t, uint8(9), metadata.decimals[coinSUI])
	assert.Equal(t, uint8(6), metadata.decimals[coinUSDC])
}

func TestStatsMissingPriceFails(t *testing.T) {
	prices := usdPrices()
	delete(prices, coinUSDC)
	svc := newPoolService(testPool(), prices, nil)

	_, err := svc.Stats(context.Background(), "0xp00l")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPriceNotFound))
}

func TestVolumeOverWindow(t *testing.T) {
	now := time.Now().UTC()
	events := []domain.PoolTradeEvent{
		{
			ID: domain.EventID{TxDigest: "t1"}, PoolID: "0xp00l",
			TypeIn: coinSUI, AmountIn: sdkmath.NewInt(1_000_000_000),
			TypeOut: coinUSDC, AmountOut: sdkmath.NewInt(1_990_000),
			TimestampMs: now.Add(-time.Hour).UnixMilli(),
		},
		{
			ID: domain.EventID{TxDigest: "t2"}, PoolID: "0xp00l",
			TypeIn: coinUSDC, AmountIn: sdkmath.NewInt(3_000_000),
			TypeOut: coinSUI, AmountOut: sdkmath.NewInt(1_400_000_000),
			TimestampMs: now.Add(-30 * time.Minute).UnixMilli(),
		},
	}
	svc := newPoolService(testPool(), usdPrices(), events)

	// 1 SUI * $2 + 3 USDC * $1 = $5.
	vol, err := svc.Volume(context.Background(), "0xp00l", now.Add(-2*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, "5.000000000000000000", vol.String())
}

func TestVolumeSeriesShape(t *testing.T) {
	svc := newPoolService(testPool(), usdPrices(), nil)

	points, err := svc.VolumeSeries(context.Background(), "0xp00l", analytics.SeriesSpec{
		TimeUnit:    time.Hour,
		TimeSpan:    24,
		BucketCount: 24,
	})
	require.NoError(t, err)
	require.Len(t, points, 24)
	for _, p := range points {
		assert.True(t, p.Value.IsZero())
	}
}
