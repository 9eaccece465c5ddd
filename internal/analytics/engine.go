// Package analytics computes pool-level aggregates (TVL, LP share price,
// trade volume, time-bucketed volume series) from pool snapshots and
// classified trade events. All computations are pure reads over snapshot
// data; nothing here mutates externally-owned state.
package analytics

import (
	"fmt"
	"log/slog"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/pricing"
)

// Engine computes pool analytics. It is stateless apart from its logger and
// LP-coin classifier, so a single Engine may serve concurrent queries for
// different pools.
type Engine struct {
	cls    *pricing.Classifier
	logger *slog.Logger
}

// NewEngine creates an Engine using cls to tell LP share coins apart from
// primary assets during price resolution.
func NewEngine(cls *pricing.Classifier, logger *slog.Logger) *Engine {
	return &Engine{
		cls:    cls,
		logger: logger.With(slog.String("component", "analytics")),
	}
}

// priceFor resolves the price of coin from the prices array co-indexed with
// poolCoins. The arrays are partitioned by LP classification first, so a
// coin priced under the wrong classification surfaces as ErrPriceNotFound
// instead of a silently wrong valuation.
func (e *Engine) priceFor(coin domain.CoinType, poolCoins []domain.CoinType, prices []sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	var (
		lpCoins, primaryCoins   []domain.CoinType
		lpPrices, primaryPrices []sdkmath.LegacyDec
	)
	for i, ct := range poolCoins {
		if i >= len(prices) {
			break
		}
		if e.cls.IsLPCoin(ct) {
			lpCoins = append(lpCoins, ct)
			lpPrices = append(lpPrices, prices[i])
		} else {
			primaryCoins = append(primaryCoins, ct)
			primaryPrices = append(primaryPrices, prices[i])
		}
	}
	price, err := pricing.Resolve(coin, e.cls, lpCoins, lpPrices, primaryCoins, primaryPrices)
	if err != nil {
		return sdkmath.LegacyDec{}, fmt.Errorf("analytics: %w", err)
	}
	return price, nil
}

// Volume sums the normalized, USD-priced input amounts of the trade events
// belonging to poolID. Events for other pools are ignored; a pool coin with
// no price or decimals entry is a caller contract violation and fails the
// whole computation.
func (e *Engine) Volume(
	poolID string,
	poolCoins []domain.CoinType,
	prices []sdkmath.LegacyDec,
	decimals map[domain.CoinType]uint8,
	events []domain.PoolTradeEvent,
) (sdkmath.LegacyDec, error) {
	total := sdkmath.LegacyZeroDec()
	for _, ev := range events {
		if ev.PoolID != poolID {
			continue
		}
		contribution, err := e.tradeValue(ev, poolCoins, prices, decimals)
		if err != nil {
			return sdkmath.LegacyDec{}, err
		}
		total = total.Add(contribution)
	}
	return total, nil
}

// tradeValue is the normalized USD value of a single trade's input side.
func (e *Engine) tradeValue(
	ev domain.PoolTradeEvent,
	poolCoins []domain.CoinType,
	prices []sdkmath.LegacyDec,
	decimals map[domain.CoinType]uint8,
) (sdkmath.LegacyDec, error) {
	dec, ok := decimals[ev.TypeIn]
	if !ok {
		return sdkmath.LegacyDec{}, fmt.Errorf("analytics: decimals for %s: %w", ev.TypeIn, domain.ErrNotFound)
	}
	price, err := e.priceFor(ev.TypeIn, poolCoins, prices)
	if err != nil {
		return sdkmath.LegacyDec{}, err
	}
	return domain.Normalize(ev.AmountIn, dec).Mul(price), nil
}

// TVL computes the total USD value locked in the given reserves. Every held
// coin must have a price and a decimals entry; iteration order does not
// affect the result.
func (e *Engine) TVL(
	reserves map[domain.CoinType]sdkmath.Int,
	prices map[domain.CoinType]sdkmath.LegacyDec,
	decimals map[domain.CoinType]uint8,
) (sdkmath.LegacyDec, error) {
	total := sdkmath.LegacyZeroDec()
	for coin, balance := range reserves {
		price, ok := prices[coin]
		if !ok {
			return sdkmath.LegacyDec{}, fmt.Errorf("analytics: tvl: %s: %w", coin, domain.ErrPriceNotFound)
		}
		dec, ok := decimals[coin]
		if !ok {
			return sdkmath.LegacyDec{}, fmt.Errorf("analytics: tvl: decimals for %s: %w", coin, domain.ErrNotFound)
		}
		total = total.Add(domain.Normalize(balance, dec).Mul(price))
	}
	return total, nil
}

// LPSharePrice is tvl divided by the normalized LP supply. A zero supply is
// an explicit error rather than an infinity.
func (e *Engine) LPSharePrice(lpSupply sdkmath.Int, lpDecimals uint8, tvl sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	if lpSupply.IsZero() {
		return sdkmath.LegacyDec{}, fmt.Errorf("analytics: lp share price: %w", domain.ErrZeroLPSupply)
	}
	return tvl.Quo(domain.Normalize(lpSupply, lpDecimals)), nil
}
