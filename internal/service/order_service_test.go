package service

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
)

type fakeOrderClient struct {
	limitOrders []domain.LimitOrder
	dcaOrders   []domain.DCAOrder
	listErr     error
	cancelled   bool
	lastTxBytes string
}

func (f *fakeOrderClient) CreateLimitOrder(_ context.Context, order domain.LimitOrder, txBytes string) error {
	f.limitOrders = append(f.limitOrders, order)
	f.lastTxBytes = txBytes
	return nil
}

func (f *fakeOrderClient) CancelLimitOrder(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return f.cancelled, nil
}

func (f *fakeOrderClient) ListLimitOrders(_ context.Context, _ string) ([]domain.LimitOrder, error) {
	return f.limitOrders, f.listErr
}

func (f *fakeOrderClient) CreateDCAOrder(_ context.Context, order domain.DCAOrder, txBytes string) error {
	f.dcaOrders = append(f.dcaOrders, order)
	f.lastTxBytes = txBytes
	return nil
}

func (f *fakeOrderClient) CancelDCAOrder(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return f.cancelled, nil
}

func (f *fakeOrderClient) ListDCAOrders(_ context.Context, _ string) ([]domain.DCAOrder, error) {
	return f.dcaOrders, f.listErr
}

type fakeOrderStore struct {
	limitOrders map[string]domain.LimitOrder
	dcaOrders   map[string]domain.DCAOrder
	statuses    map[string]domain.OrderStatus
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		limitOrders: map[string]domain.LimitOrder{},
		dcaOrders:   map[string]domain.DCAOrder{},
		statuses:    map[string]domain.OrderStatus{},
	}
}

func (f *fakeOrderStore) InsertLimitOrder(_ context.Context, o domain.LimitOrder) error {
	f.limitOrders[o.ID.String()] = o
	return nil
}

func (f *fakeOrderStore) UpdateLimitOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeOrderStore) ListLimitOrdersByOwner(_ context.Context, owner string, _ domain.ListOpts) ([]domain.LimitOrder, error) {
	var out []domain.LimitOrder
	for _, o := range f.limitOrders {
		if o.Owner == owner {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) InsertDCAOrder(_ context.Context, o domain.DCAOrder) error {
	f.dcaOrders[o.ID.String()] = o
	return nil
}

func (f *fakeOrderStore) UpdateDCAOrderStatus(_ context.Context, id string, status domain.OrderStatus) error {
	f.statuses[id] = status
	return nil
}

func (f *fakeOrderStore) ListDCAOrdersByOwner(_ context.Context, owner string, _ domain.ListOpts) ([]domain.DCAOrder, error) {
	var out []domain.DCAOrder
	for _, o := range f.dcaOrders {
		if o.Owner == owner {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeLimiter struct {
	allowed bool
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return f.allowed, nil
}

func testBundle(t *testing.T) *domain.TransactionBundle {
	t.Helper()
	bundle := &domain.TransactionBundle{Sender: "0xsender", GasBudget: 1}
	bundle.AddObjectInput(domain.ObjectRef{ObjectID: "0xp00l", Version: 1, Digest: "d"})
	return bundle
}

func limitRequest(t *testing.T) LimitOrderRequest {
	t.Helper()
	return LimitOrderRequest{
		Owner:        "0xowner",
		Recipient:    "0xowner",
		CoinInType:   coinSUI,
		CoinOutType:  coinUSDC,
		AmountIn:     sdkmath.NewInt(1_000_000_000),
		MinAmountOut: sdkmath.NewInt(1_900_000),
		ExpiryMs:     time.Now().Add(time.Hour).UnixMilli(),
		Bundle:       testBundle(t),
	}
}

func TestPlaceLimitOrderRegistersAndMirrors(t *testing.T) {
	client := &fakeOrderClient{}
	store := newFakeOrderStore()
	svc := NewOrderService(client, store, &fakeLimiter{allowed: true}, discard())

	order, err := svc.PlaceLimitOrder(context.Background(), limitRequest(t))
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.NotEqual(t, uuid.Nil, order.ID)
	assert.NotEmpty(t, client.lastTxBytes)
	assert.Contains(t, store.limitOrders, order.ID.String())
}

func TestPlaceLimitOrderRateLimited(t *testing.T) {
	svc := NewOrderService(&fakeOrderClient{}, newFakeOrderStore(), &fakeLimiter{allowed: false}, discard())

	order, err := svc.PlaceLimitOrder(context.Background(), limitRequest(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	assert.Nil(t, order)
}

func TestCancelLimitOrderUpdatesMirror(t *testing.T) {
	client := &fakeOrderClient{cancelled: true}
	store := newFakeOrderStore()
	svc := NewOrderService(client, store, &fakeLimiter{allowed: true}, discard())

	id := uuid.New()
	cancelled, err := svc.CancelLimitOrder(context.Background(), id, "0xowner")
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, domain.OrderStatusCancelled, store.statuses[id.String()])
}

func TestListLimitOrdersFallsBackToMirror(t *testing.T) {
	client := &fakeOrderClient{listErr: errors.New("indexer down")}
	store := newFakeOrderStore()
	store.limitOrders["x"] = domain.LimitOrder{
		ID: uuid.New(), Owner: "0xowner",
		AmountIn: sdkmath.NewInt(1), MinAmountOut: sdkmath.NewInt(1),
	}
	svc := NewOrderService(client, store, &fakeLimiter{allowed: true}, discard())

	orders, err := svc.ListLimitOrders(context.Background(), "0xowner")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestPlaceDCAOrder(t *testing.T) {
	client := &fakeOrderClient{}
	store := newFakeOrderStore()
	svc := NewOrderService(client, store, &fakeLimiter{allowed: true}, discard())

	order, err := svc.PlaceDCAOrder(context.Background(), DCAOrderRequest{
		Owner:            "0xowner",
		Recipient:        "0xowner",
		CoinInType:       coinSUI,
		CoinOutType:      coinUSDC,
		AmountPerTranche: sdkmath.NewInt(100),
		TrancheCount:     10,
		Interval:         time.Hour,
		MinAmountOut:     sdkmath.NewInt(90),
		Bundle:           testBundle(t),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, order.TrancheCount)
	assert.Contains(t, store.dcaOrders, order.ID.String())
}
