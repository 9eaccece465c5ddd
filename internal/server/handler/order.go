package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/service"
)

// OrderHandler serves limit and DCA order endpoints. Placement builds the
// underlying swap bundle first, then registers the order with the indexer.
type OrderHandler struct {
	orders *service.OrderService
	trades *service.TradeService
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *service.OrderService, trades *service.TradeService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		trades: trades,
		logger: logger.With(slog.String("handler", "order")),
	}
}

type limitOrderRequest struct {
	Owner        string  `json:"owner"`
	Recipient    string  `json:"recipient"`
	PoolID       string  `json:"pool_id"`
	CoinIn       string  `json:"coin_in"`
	CoinOut      string  `json:"coin_out"`
	AmountIn     string  `json:"amount_in"`
	MinAmountOut string  `json:"min_amount_out"`
	ExpiryMs     int64   `json:"expiry_ms"`
	Slippage     float64 `json:"slippage"`
	GasBudget    uint64  `json:"gas_budget"`
}

// PlaceLimitOrder builds the partial swap bundle and registers a limit order.
// POST /api/orders/limit
func (h *OrderHandler) PlaceLimitOrder(w http.ResponseWriter, r *http.Request) {
	var req limitOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	amountIn, err := parseAmount(req.AmountIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount_in: "+err.Error())
		return
	}
	minOut, err := parseAmount(req.MinAmountOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "min_amount_out: "+err.Error())
		return
	}
	if req.ExpiryMs <= time.Now().UnixMilli() {
		writeError(w, http.StatusBadRequest, "expiry_ms must be in the future")
		return
	}

	bundle, err := h.trades.BuildSwap(r.Context(), service.SwapRequest{
		Sender:    req.Owner,
		PoolID:    req.PoolID,
		CoinIn:    domain.CoinType(req.CoinIn),
		CoinOut:   domain.CoinType(req.CoinOut),
		AmountIn:  amountIn,
		Slippage:  req.Slippage,
		GasBudget: req.GasBudget,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = req.Owner
	}
	order, err := h.orders.PlaceLimitOrder(r.Context(), service.LimitOrderRequest{
		Owner:        req.Owner,
		Recipient:    recipient,
		CoinInType:   domain.CoinType(req.CoinIn),
		CoinOutType:  domain.CoinType(req.CoinOut),
		AmountIn:     amountIn,
		MinAmountOut: minOut,
		ExpiryMs:     req.ExpiryMs,
		Bundle:       bundle,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// ListLimitOrders lists the owner's limit orders, newest first.
// GET /api/orders/limit?owner=0x...
func (h *OrderHandler) ListLimitOrders(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	orders, err := h.orders.ListLimitOrders(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// CancelLimitOrder cancels a resting limit order.
// DELETE /api/orders/limit/{id}?owner=0x...
func (h *OrderHandler) CancelLimitOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(pathParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	cancelled, err := h.orders.CancelLimitOrder(r.Context(), id, owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": cancelled})
}

type dcaOrderRequest struct {
	Owner            string  `json:"owner"`
	Recipient        string  `json:"recipient"`
	PoolID           string  `json:"pool_id"`
	CoinIn           string  `json:"coin_in"`
	CoinOut          string  `json:"coin_out"`
	AmountPerTranche string  `json:"amount_per_tranche"`
	TrancheCount     int     `json:"tranche_count"`
	IntervalMs       int64   `json:"interval_ms"`
	MinAmountOut     string  `json:"min_amount_out"`
	Slippage         float64 `json:"slippage"`
	GasBudget        uint64  `json:"gas_budget"`
}

// PlaceDCAOrder builds the per-tranche swap bundle and registers a DCA order.
// POST /api/orders/dca
func (h *OrderHandler) PlaceDCAOrder(w http.ResponseWriter, r *http.Request) {
	var req dcaOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	perTranche, err := parseAmount(req.AmountPerTranche)
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount_per_tranche: "+err.Error())
		return
	}
	minOut, err := parseAmount(req.MinAmountOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "min_amount_out: "+err.Error())
		return
	}
	if req.TrancheCount <= 0 {
		writeError(w, http.StatusBadRequest, "tranche_count must be positive")
		return
	}
	if req.IntervalMs <= 0 {
		writeError(w, http.StatusBadRequest, "interval_ms must be positive")
		return
	}

	bundle, err := h.trades.BuildSwap(r.Context(), service.SwapRequest{
		Sender:    req.Owner,
		PoolID:    req.PoolID,
		CoinIn:    domain.CoinType(req.CoinIn),
		CoinOut:   domain.CoinType(req.CoinOut),
		AmountIn:  perTranche,
		Slippage:  req.Slippage,
		GasBudget: req.GasBudget,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = req.Owner
	}
	order, err := h.orders.PlaceDCAOrder(r.Context(), service.DCAOrderRequest{
		Owner:            req.Owner,
		Recipient:        recipient,
		CoinInType:       domain.CoinType(req.CoinIn),
		CoinOutType:      domain.CoinType(req.CoinOut),
		AmountPerTranche: perTranche,
		TrancheCount:     req.TrancheCount,
		Interval:         time.Duration(req.IntervalMs) * time.Millisecond,
		MinAmountOut:     minOut,
		Bundle:           bundle,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// ListDCAOrders lists the owner's DCA orders, newest first.
// GET /api/orders/dca?owner=0x...
func (h *OrderHandler) ListDCAOrders(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	orders, err := h.orders.ListDCAOrders(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

// CancelDCAOrder cancels a DCA order's remaining tranches.
// DELETE /api/orders/dca/{id}?owner=0x...
func (h *OrderHandler) CancelDCAOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(pathParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	cancelled, err := h.orders.CancelDCAOrder(r.Context(), id, owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cancelled": cancelled})
}
