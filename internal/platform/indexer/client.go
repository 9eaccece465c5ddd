// Package indexer is an HTTP client for the external order indexer: swap
// quotes against live pool state, and limit/DCA order placement, cancel and
// listing. Amounts travel as decimal strings; partial transaction bytes as
// base64.
package indexer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/lantern-fi/suipool/internal/domain"
)

// Client talks to the order indexer's JSON API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an indexer client for the given base URL, e.g.
// "https://indexer.lantern.fi".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// QuoteSwapOut returns the expected output amount of an exact-in swap
// against the pool's current reserves, before slippage is applied.
func (c *Client) QuoteSwapOut(ctx context.Context, poolID string, coinIn, coinOut domain.CoinType, amountIn sdkmath.Int) (sdkmath.Int, error) {
	req := quoteRequest{
		PoolID:   poolID,
		CoinIn:   string(coinIn),
		CoinOut:  string(coinOut),
		AmountIn: amountIn.String(),
	}
	var resp quoteResponse
	if err := c.doPost(ctx, "/v1/quote/swap", req, &resp); err != nil {
		return sdkmath.Int{}, fmt.Errorf("indexer: quote swap: %w", err)
	}
	out, ok := sdkmath.NewIntFromString(resp.AmountOut)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("indexer: bad quote amount %q", resp.AmountOut)
	}
	return out, nil
}

// CreateLimitOrder registers a limit order with the indexer. txBytes is the
// base64 partial transaction the executor completes on trigger.
func (c *Client) CreateLimitOrder(ctx context.Context, order domain.LimitOrder, txBytes string) error {
	req := createLimitOrderRequest{
		OrderID:      order.ID.String(),
		Owner:        order.Owner,
		Recipient:    order.Recipient,
		CoinInType:   string(order.CoinInType),
		CoinOutType:  string(order.CoinOutType),
		AmountIn:     order.AmountIn.String(),
		MinAmountOut: order.MinAmountOut.String(),
		ExpiryMs:     order.ExpiryMs,
		TxBytes:      txBytes,
	}
	var resp createOrderResponse
	if err := c.doPost(ctx, "/v1/orders/limit", req, &resp); err != nil {
		return fmt.Errorf("indexer: create limit order: %w", err)
	}
	return nil
}

// CancelLimitOrder cancels a resting limit order. Returns whether the
// indexer actually cancelled it (false when already filled or expired).
func (c *Client) CancelLimitOrder(ctx context.Context, orderID uuid.UUID, owner string) (bool, error) {
	req := cancelOrderRequest{OrderID: orderID.String(), Owner: owner}
	var resp cancelOrderResponse
	if err := c.doPost(ctx, "/v1/orders/limit/cancel", req, &resp); err != nil {
		return false, fmt.Errorf("indexer: cancel limit order: %w", err)
	}
	return resp.Cancelled, nil
}

// ListLimitOrders returns the owner's limit orders, newest first.
func (c *Client) ListLimitOrders(ctx context.Context, owner string) ([]domain.LimitOrder, error) {
	var resp listOrdersResponse
	if err := c.doGet(ctx, "/v1/orders/limit?owner="+owner, &resp); err != nil {
		return nil, fmt.Errorf("indexer: list limit orders: %w", err)
	}

	orders := make([]domain.LimitOrder, 0, len(resp.Orders))
	for _, e := range resp.Orders {
		order, err := limitOrderFromWire(e)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// CreateDCAOrder registers a DCA order with the indexer.
func (c *Client) CreateDCAOrder(ctx context.Context, order domain.DCAOrder, txBytes string) error {
	req := createDCAOrderRequest{
		OrderID:          order.ID.String(),
		Owner:            order.Owner,
		Recipient:        order.Recipient,
		CoinInType:       string(order.CoinInType),
		CoinOutType:      string(order.CoinOutType),
		AmountPerTranche: order.AmountPerTranche.String(),
		TrancheCount:     order.TrancheCount,
		IntervalMs:       order.Interval.Milliseconds(),
		MinAmountOut:     order.MinAmountOut.String(),
		TxBytes:          txBytes,
	}
	var resp createOrderResponse
	if err := c.doPost(ctx, "/v1/orders/dca", req, &resp); err != nil {
		return fmt.Errorf("indexer: create dca order: %w", err)
	}
	return nil
}

// CancelDCAOrder cancels a DCA order's remaining tranches.
func (c *Client) CancelDCAOrder(ctx context.Context, orderID uuid.UUID, owner string) (bool, error) {
	req := cancelOrderRequest{OrderID: orderID.String(), Owner: owner}
	var resp cancelOrderResponse
	if err := c.doPost(ctx, "/v1/orders/dca/cancel", req, &resp); err != nil {
		return false, fmt.Errorf("indexer: cancel dca order: %w", err)
	}
	return resp.Cancelled, nil
}

// ListDCAOrders returns the owner's DCA orders, newest first.
func (c *Client) ListDCAOrders(ctx context.Context, owner string) ([]domain.DCAOrder, error) {
	var resp listOrdersResponse
	if err := c.doGet(ctx, "/v1/orders/dca?owner="+owner, &resp); err != nil {
		return nil, fmt.Errorf("indexer: list dca orders: %w", err)
	}

	orders := make([]domain.DCAOrder, 0, len(resp.Orders))
	for _, e := range resp.Orders {
		order, err := dcaOrderFromWire(e)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func limitOrderFromWire(e orderEntry) (domain.LimitOrder, error) {
	id, err := uuid.Parse(e.OrderID)
	if err != nil {
		return domain.LimitOrder{}, fmt.Errorf("indexer: bad order id %q: %w", e.OrderID, err)
	}
	amountIn, ok := sdkmath.NewIntFromString(e.AmountIn)
	if !ok {
		return domain.LimitOrder{}, fmt.Errorf("indexer: bad amount_in %q", e.AmountIn)
	}
	minOut, ok := sdkmath.NewIntFromString(e.MinAmountOut)
	if !ok {
		return domain.LimitOrder{}, fmt.Errorf("indexer: bad min_amount_out %q", e.MinAmountOut)
	}
	return domain.LimitOrder{
		ID:           id,
		Owner:        e.Owner,
		Recipient:    e.Recipient,
		CoinInType:   domain.CoinType(e.CoinInType),
		CoinOutType:  domain.CoinType(e.CoinOutType),
		AmountIn:     amountIn,
		MinAmountOut: minOut,
		ExpiryMs:     e.ExpiryMs,
		Status:       statusFromWire(e.Status),
		CreatedAt:    time.UnixMilli(e.CreatedAtMs).UTC(),
	}, nil
}

func dcaOrderFromWire(e orderEntry) (domain.DCAOrder, error) {
	id, err := uuid.Parse(e.OrderID)
	if err != nil {
		return domain.DCAOrder{}, fmt.Errorf("indexer: bad order id %q: %w", e.OrderID, err)
	}
	perTranche, ok := sdkmath.NewIntFromString(e.AmountPerTranche)
	if !ok {
		return domain.DCAOrder{}, fmt.Errorf("indexer: bad amount_per_tranche %q", e.AmountPerTranche)
	}
	minOut, ok := sdkmath.NewIntFromString(e.MinAmountOut)
	if !ok {
		return domain.DCAOrder{}, fmt.Errorf("indexer: bad min_amount_out %q", e.MinAmountOut)
	}
	return domain.DCAOrder{
		ID:               id,
		Owner:            e.Owner,
		Recipient:        e.Recipient,
		CoinInType:       domain.CoinType(e.CoinInType),
		CoinOutType:      domain.CoinType(e.CoinOutType),
		AmountPerTranche: perTranche,
		TrancheCount:     e.TrancheCount,
		TranchesDone:     e.TranchesDone,
		Interval:         time.Duration(e.IntervalMs) * time.Millisecond,
		MinAmountOut:     minOut,
		Status:           statusFromWire(e.Status),
		CreatedAt:        time.UnixMilli(e.CreatedAtMs).UTC(),
	}, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) doPost(ctx context.Context, path string, payload, result any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) doGet(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
