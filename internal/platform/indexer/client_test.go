package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
)

func TestQuoteSwapOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/quote/swap", r.URL.Path)

		var req quoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "0xp00l", req.PoolID)
		assert.Equal(t, "1000000000", req.AmountIn)

		json.NewEncoder(w).Encode(quoteResponse{AmountOut: "1990000"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	out, err := c.QuoteSwapOut(context.Background(), "0xp00l",
		"0x2::sui::SUI", "0xabc::usdc::USDC", sdkmath.NewInt(1_000_000_000))
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(1_990_000), out)
}

func TestListLimitOrdersNewestFirst(t *testing.T) {
	older := uuid.New()
	newer := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/orders/limit", r.URL.Path)
		require.Equal(t, "0xowner", r.URL.Query().Get("owner"))

		json.NewEncoder(w).Encode(listOrdersResponse{Orders: []orderEntry{
			{
				OrderID: older.String(), Owner: "0xowner",
				CoinInType: "0x2::sui::SUI", CoinOutType: "0xabc::usdc::USDC",
				AmountIn: "100", MinAmountOut: "90",
				Status: "active", CreatedAtMs: 1_700_000_000_000,
			},
			{
				OrderID: newer.String(), Owner: "0xowner",
				CoinInType: "0x2::sui::SUI", CoinOutType: "0xabc::usdc::USDC",
				AmountIn: "200", MinAmountOut: "180",
				Status: "active", CreatedAtMs: 1_700_000_100_000,
			},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	orders, err := c.ListLimitOrders(context.Background(), "0xowner")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer, orders[0].ID)
	assert.Equal(t, older, orders[1].ID)
	assert.Equal(t, sdkmath.NewInt(200), orders[0].AmountIn)
}

func TestCancelLimitOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/orders/limit/cancel", r.URL.Path)
		json.NewEncoder(w).Encode(cancelOrderResponse{Cancelled: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	ok, err := c.CancelLimitOrder(context.Background(), uuid.New(), "0xowner")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimitedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.CreateLimitOrder(context.Background(), domain.LimitOrder{
		ID:           uuid.New(),
		AmountIn:     sdkmath.NewInt(1),
		MinAmountOut: sdkmath.NewInt(1),
	}, "dHg=")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestAPIErrorSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "expiry in the past"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	err := c.CreateLimitOrder(context.Background(), domain.LimitOrder{
		ID:           uuid.New(),
		AmountIn:     sdkmath.NewInt(1),
		MinAmountOut: sdkmath.NewInt(1),
	}, "dHg=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expiry in the past")
}
