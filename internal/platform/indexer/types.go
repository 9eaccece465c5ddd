package indexer

import (
	"github.com/lantern-fi/suipool/internal/domain"
)

// quoteRequest asks the indexer's pool-math service for the expected output
// of an exact-in swap against the current pool state.
type quoteRequest struct {
	PoolID   string `json:"pool_id"`
	CoinIn   string `json:"coin_in"`
	CoinOut  string `json:"coin_out"`
	AmountIn string `json:"amount_in"`
}

type quoteResponse struct {
	AmountOut string `json:"amount_out"`
}

// createLimitOrderRequest carries the order terms plus the partial
// transaction bytes the executor completes and submits on trigger.
type createLimitOrderRequest struct {
	OrderID      string `json:"order_id"`
	Owner        string `json:"owner"`
	Recipient    string `json:"recipient"`
	CoinInType   string `json:"coin_in_type"`
	CoinOutType  string `json:"coin_out_type"`
	AmountIn     string `json:"amount_in"`
	MinAmountOut string `json:"min_amount_out"`
	ExpiryMs     int64  `json:"expiry_ms"`
	TxBytes      string `json:"tx_bytes"`
}

type createDCAOrderRequest struct {
	OrderID          string `json:"order_id"`
	Owner            string `json:"owner"`
	Recipient        string `json:"recipient"`
	CoinInType       string `json:"coin_in_type"`
	CoinOutType      string `json:"coin_out_type"`
	AmountPerTranche string `json:"amount_per_tranche"`
	TrancheCount     int    `json:"tranche_count"`
	IntervalMs       int64  `json:"interval_ms"`
	MinAmountOut     string `json:"min_amount_out"`
	TxBytes          string `json:"tx_bytes"`
}

type cancelOrderRequest struct {
	OrderID string `json:"order_id"`
	Owner   string `json:"owner"`
}

type cancelOrderResponse struct {
	Cancelled bool `json:"cancelled"`
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// orderEntry is the indexer's wire form of either order kind; numeric
// amounts travel as decimal strings.
type orderEntry struct {
	OrderID          string `json:"order_id"`
	Owner            string `json:"owner"`
	Recipient        string `json:"recipient"`
	CoinInType       string `json:"coin_in_type"`
	CoinOutType      string `json:"coin_out_type"`
	AmountIn         string `json:"amount_in,omitempty"`
	AmountPerTranche string `json:"amount_per_tranche,omitempty"`
	TrancheCount     int    `json:"tranche_count,omitempty"`
	TranchesDone     int    `json:"tranches_done,omitempty"`
	IntervalMs       int64  `json:"interval_ms,omitempty"`
	MinAmountOut     string `json:"min_amount_out"`
	ExpiryMs         int64  `json:"expiry_ms,omitempty"`
	Status           string `json:"status"`
	CreatedAtMs      int64  `json:"created_at_ms"`
}

type listOrdersResponse struct {
	Orders []orderEntry `json:"orders"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func statusFromWire(s string) domain.OrderStatus {
	switch domain.OrderStatus(s) {
	case domain.OrderStatusPending, domain.OrderStatusActive,
		domain.OrderStatusFilled, domain.OrderStatusCancelled,
		domain.OrderStatusExpired:
		return domain.OrderStatus(s)
	default:
		return domain.OrderStatusPending
	}
}
