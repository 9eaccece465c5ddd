// Package pricing resolves USD prices for coin types from co-indexed
// coin/price arrays, classifying LP share coins and primary assets by their
// type-tag convention.
package pricing

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
)

// Classifier decides whether a coin type is an LP share coin. The protocol
// mints all LP coins from a single module, so the type tag's module segment
// is the discriminator.
type Classifier struct {
	lpModule string
}

// NewClassifier creates a Classifier for the given LP coin module name
// (e.g. "amm_lp").
func NewClassifier(lpModule string) *Classifier {
	return &Classifier{lpModule: lpModule}
}

// IsLPCoin reports whether coin is an LP share coin.
func (c *Classifier) IsLPCoin(coin domain.CoinType) bool {
	return coin.Module() == c.lpModule
}

// Resolve returns the price of coin. LP share coins are looked up in
// lpCoins/lpPrices, primary assets in coins/prices; both pairs are
// co-indexed. A coin absent from the array matching its classification is a
// caller contract violation and yields ErrPriceNotFound. Coin types are
// unique within each array by construction, so the first match wins.
func Resolve(
	coin domain.CoinType,
	cls *Classifier,
	lpCoins []domain.CoinType,
	lpPrices []sdkmath.LegacyDec,
	coins []domain.CoinType,
	prices []sdkmath.LegacyDec,
) (sdkmath.LegacyDec, error) {
	if cls.IsLPCoin(coin) {
		return scan(coin, lpCoins, lpPrices)
	}
	return scan(coin, coins, prices)
}

func scan(coin domain.CoinType, coins []domain.CoinType, prices []sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	for i, ct := range coins {
		if ct == coin {
			if i >= len(prices) {
				break
			}
			return prices[i], nil
		}
	}
	return sdkmath.LegacyDec{}, fmt.Errorf("pricing: %s: %w", coin, domain.ErrPriceNotFound)
}
