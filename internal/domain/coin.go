// Package domain defines the core types and interfaces shared across the
// suipool services: coin and pool models, protocol events, transaction
// bundles, order records, and the cache/store contracts implemented by the
// infrastructure packages.
package domain

import (
	"strings"

	sdkmath "cosmossdk.io/math"
)

// CoinType is the fully-qualified Move type tag of a fungible asset, e.g.
// "0x2::sui::SUI". It uniquely identifies an asset and is used as a mapping
// key throughout the system.
type CoinType string

// Module returns the middle segment of the type tag ("sui" for
// "0x2::sui::SUI"), or "" if the tag is malformed.
func (c CoinType) Module() string {
	parts := strings.Split(string(c), "::")
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

// Package returns the address segment of the type tag.
func (c CoinType) Package() string {
	parts := strings.SplitN(string(c), "::", 2)
	return parts[0]
}

// maxDecPrecision is the fixed-point precision of LegacyDec. Normalization is
// exact for coin decimals up to this bound.
const maxDecPrecision = 18

// Normalize converts a raw balance in a coin's smallest unit to human scale
// by dividing by 10^decimals. The result is an 18-digit fixed-point decimal,
// exact for decimals <= 18; larger scales lose at most the sub-1e-18 tail.
func Normalize(balance sdkmath.Int, decimals uint8) sdkmath.LegacyDec {
	if decimals <= maxDecPrecision {
		return sdkmath.LegacyNewDecFromIntWithPrec(balance, int64(decimals))
	}
	scale := sdkmath.LegacyNewDec(10).Power(uint64(decimals) - maxDecPrecision)
	return sdkmath.LegacyNewDecFromIntWithPrec(balance, maxDecPrecision).Quo(scale)
}

// CoinMeta is the on-chain metadata for a coin type, as served by the
// fullnode metadata collaborator.
type CoinMeta struct {
	Type     CoinType `json:"type"`
	Symbol   string   `json:"symbol"`
	Name     string   `json:"name"`
	Decimals uint8    `json:"decimals"`
}

// CoinObject is an owned on-chain coin object, the unit the coin selector
// works with.
type CoinObject struct {
	Ref     ObjectRef   `json:"ref"`
	Type    CoinType    `json:"type"`
	Balance sdkmath.Int `json:"balance"`
}
