package domain

import (
	"sort"

	sdkmath "cosmossdk.io/math"
)

// Pool is a read-only snapshot of a CMMM liquidity pool's on-chain state.
// It is fetched per query from the fullnode and never mutated by this
// process; swaps, deposits and withdraws only change it through on-chain
// execution.
type Pool struct {
	ID         string                   `json:"id"`
	Name       string                   `json:"name"`
	LPCoinType CoinType                 `json:"lp_coin_type"`
	LPSupply   sdkmath.Int              `json:"lp_supply"`
	Reserves   map[CoinType]sdkmath.Int `json:"reserves"`

	// Ref is the object reference of the snapshot, needed when the pool is
	// passed as a transaction input.
	Ref ObjectRef `json:"ref"`
}

// CoinCount returns the number of coins held by the pool.
func (p *Pool) CoinCount() int {
	return len(p.Reserves)
}

// CoinTypes returns the pool's coin types in lexicographic order so callers
// iterating reserves produce deterministic output.
func (p *Pool) CoinTypes() []CoinType {
	types := make([]CoinType, 0, len(p.Reserves))
	for ct := range p.Reserves {
		types = append(types, ct)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
