package domain

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of a limit or DCA order as tracked by
// the indexer.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusActive    OrderStatus = "active"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
)

// LimitOrder is a resting order to swap AmountIn of CoinInType once at least
// MinAmountOut of CoinOutType can be obtained.
type LimitOrder struct {
	ID           uuid.UUID   `json:"id"`
	Owner        string      `json:"owner"`
	Recipient    string      `json:"recipient"`
	CoinInType   CoinType    `json:"coin_in_type"`
	CoinOutType  CoinType    `json:"coin_out_type"`
	AmountIn     sdkmath.Int `json:"amount_in"`
	MinAmountOut sdkmath.Int `json:"min_amount_out"`
	ExpiryMs     int64       `json:"expiry_ms"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

// DCAOrder is a dollar-cost-average order: TrancheCount swaps of
// AmountPerTranche, executed every Interval.
type DCAOrder struct {
	ID               uuid.UUID   `json:"id"`
	Owner            string      `json:"owner"`
	Recipient        string      `json:"recipient"`
	CoinInType       CoinType    `json:"coin_in_type"`
	CoinOutType      CoinType    `json:"coin_out_type"`
	AmountPerTranche sdkmath.Int `json:"amount_per_tranche"`
	TrancheCount     int         `json:"tranche_count"`
	TranchesDone     int         `json:"tranches_done"`
	Interval         time.Duration `json:"interval"`
	MinAmountOut     sdkmath.Int `json:"min_amount_out"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
}
