package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/lantern-fi/suipool/internal/domain"
)

// orderRateLimit caps order placements per owner over the sliding window.
const (
	orderRateLimit  = 10
	orderRateWindow = time.Minute
)

// OrderClient is the slice of the indexer client the order service needs.
type OrderClient interface {
	CreateLimitOrder(ctx context.Context, order domain.LimitOrder, txBytes string) error
	CancelLimitOrder(ctx context.Context, orderID uuid.UUID, owner string) (bool, error)
	ListLimitOrders(ctx context.Context, owner string) ([]domain.LimitOrder, error)

	CreateDCAOrder(ctx context.Context, order domain.DCAOrder, txBytes string) error
	CancelDCAOrder(ctx context.Context, orderID uuid.UUID, owner string) (bool, error)
	ListDCAOrders(ctx context.Context, owner string) ([]domain.DCAOrder, error)
}

// LimitOrderRequest describes a limit order placement. Bundle is the partial
// swap transaction the indexer's executor completes on trigger.
type LimitOrderRequest struct {
	Owner        string
	Recipient    string
	CoinInType   domain.CoinType
	CoinOutType  domain.CoinType
	AmountIn     sdkmath.Int
	MinAmountOut sdkmath.Int
	ExpiryMs     int64
	Bundle       *domain.TransactionBundle
}

// DCAOrderRequest describes a DCA order placement.
type DCAOrderRequest struct {
	Owner            string
	Recipient        string
	CoinInType       domain.CoinType
	CoinOutType      domain.CoinType
	AmountPerTranche sdkmath.Int
	TrancheCount     int
	Interval         time.Duration
	MinAmountOut     sdkmath.Int
	Bundle           *domain.TransactionBundle
}

// OrderService places, cancels and lists limit and DCA orders against the
// external indexer, mirroring every order into the local store so listings
// survive indexer outages. Placement is rate limited per owner.
type OrderService struct {
	indexer OrderClient
	store   domain.OrderStore
	limiter domain.RateLimiter
	logger  *slog.Logger
}

// NewOrderService creates an OrderService with all required dependencies.
func NewOrderService(
	client OrderClient,
	store domain.OrderStore,
	limiter domain.RateLimiter,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		indexer: client,
		store:   store,
		limiter: limiter,
		logger:  logger.With(slog.String("component", "order_service")),
	}
}

// PlaceLimitOrder registers a limit order with the indexer and records it
// locally. Returns the order with its assigned ID.
func (s *OrderService) PlaceLimitOrder(ctx context.Context, req LimitOrderRequest) (*domain.LimitOrder, error) {
	if err := s.allowPlacement(ctx, req.Owner); err != nil {
		return nil, err
	}

	txBytes, err := req.Bundle.EncodeBase64()
	if err != nil {
		return nil, fmt.Errorf("order_service: encode bundle: %w", err)
	}

	order := domain.LimitOrder{
		ID:           uuid.New(),
		Owner:        req.Owner,
		Recipient:    req.Recipient,
		CoinInType:   req.CoinInType,
		CoinOutType:  req.CoinOutType,
		AmountIn:     req.AmountIn,
		MinAmountOut: req.MinAmountOut,
		ExpiryMs:     req.ExpiryMs,
		Status:       domain.OrderStatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.indexer.CreateLimitOrder(ctx, order, txBytes); err != nil {
		return nil, fmt.Errorf("order_service: create limit order: %w", err)
	}

	if err := s.store.InsertLimitOrder(ctx, order); err != nil {
		// The indexer accepted the order; a failed local mirror is not fatal.
		s.logger.WarnContext(ctx, "order_service: local limit order insert failed",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "placed limit order",
		slog.String("order_id", order.ID.String()),
		slog.String("owner", order.Owner),
	)
	return &order, nil
}

// CancelLimitOrder cancels a resting limit order. Returns whether the
// indexer actually cancelled it.
func (s *OrderService) CancelLimitOrder(ctx context.Context, orderID uuid.UUID, owner string) (bool, error) {
	cancelled, err := s.indexer.CancelLimitOrder(ctx, orderID, owner)
	if err != nil {
		return false, fmt.Errorf("order_service: cancel limit order %s: %w", orderID, err)
	}
	if cancelled {
		if err := s.store.UpdateLimitOrderStatus(ctx, orderID.String(), domain.OrderStatusCancelled); err != nil {
			s.logger.WarnContext(ctx, "order_service: local limit order status update failed",
				slog.String("order_id", orderID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return cancelled, nil
}

// ListLimitOrders returns the owner's limit orders, newest first. The
// indexer is authoritative; on indexer failure the local mirror serves the
// listing.
func (s *OrderService) ListLimitOrders(ctx context.Context, owner string) ([]domain.LimitOrder, error) {
	orders, err := s.indexer.ListLimitOrders(ctx, owner)
	if err == nil {
		return orders, nil
	}
	s.logger.WarnContext(ctx, "order_service: indexer limit listing failed, serving local mirror",
		slog.String("owner", owner),
		slog.String("error", err.Error()),
	)

	orders, storeErr := s.store.ListLimitOrdersByOwner(ctx, owner, domain.ListOpts{})
	if storeErr != nil {
		return nil, fmt.Errorf("order_service: list limit orders: %w", storeErr)
	}
	return orders, nil
}

// PlaceDCAOrder registers a DCA order with the indexer and records it
// locally. Returns the order with its assigned ID.
func (s *OrderService) PlaceDCAOrder(ctx context.Context, req DCAOrderRequest) (*domain.DCAOrder, error) {
	if err := s.allowPlacement(ctx, req.Owner); err != nil {
		return nil, err
	}

	txBytes, err := req.Bundle.EncodeBase64()
	if err != nil {
		return nil, fmt.Errorf("order_service: encode bundle: %w", err)
	}

	order := domain.DCAOrder{
		ID:               uuid.New(),
		Owner:            req.Owner,
		Recipient:        req.Recipient,
		CoinInType:       req.CoinInType,
		CoinOutType:      req.CoinOutType,
		AmountPerTranche: req.AmountPerTranche,
		TrancheCount:     req.TrancheCount,
		Interval:         req.Interval,
		MinAmountOut:     req.MinAmountOut,
		Status:           domain.OrderStatusPending,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.indexer.CreateDCAOrder(ctx, order, txBytes); err != nil {
		return nil, fmt.Errorf("order_service: create dca order: %w", err)
	}

	if err := s.store.InsertDCAOrder(ctx, order); err != nil {
		s.logger.WarnContext(ctx, "order_service: local dca order insert failed",
			slog.String("order_id", order.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "placed dca order",
		slog.String("order_id", order.ID.String()),
		slog.String("owner", order.Owner),
	)
	return &order, nil
}

// CancelDCAOrder cancels a DCA order's remaining tranches.
func (s *OrderService) CancelDCAOrder(ctx context.Context, orderID uuid.UUID, owner string) (bool, error) {
	cancelled, err := s.indexer.CancelDCAOrder(ctx, orderID, owner)
	if err != nil {
		return false, fmt.Errorf("order_service: cancel dca order %s: %w", orderID, err)
	}
	if cancelled {
		if err := s.store.UpdateDCAOrderStatus(ctx, orderID.String(), domain.OrderStatusCancelled); err != nil {
			s.logger.WarnContext(ctx, "order_service: local dca order status update failed",
				slog.String("order_id", orderID.String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return cancelled, nil
}

// ListDCAOrders returns the owner's DCA orders, newest first, with the same
// indexer-then-mirror fallback as ListLimitOrders.
func (s *OrderService) ListDCAOrders(ctx context.Context, owner string) ([]domain.DCAOrder, error) {
	orders, err := s.indexer.ListDCAOrders(ctx, owner)
	if err == nil {
		return orders, nil
	}
	s.logger.WarnContext(ctx, "order_service: indexer dca listing failed, serving local mirror",
		slog.String("owner", owner),
		slog.String("error", err.Error()),
	)

	orders, storeErr := s.store.ListDCAOrdersByOwner(ctx, owner, domain.ListOpts{})
	if storeErr != nil {
		return nil, fmt.Errorf("order_service: list dca orders: %w", storeErr)
	}
	return orders, nil
}

func (s *OrderService) allowPlacement(ctx context.Context, owner string) error {
	allowed, err := s.limiter.Allow(ctx, "orders:"+owner, orderRateLimit, orderRateWindow)
	if err != nil {
		return fmt.Errorf("order_service: rate limiter: %w", err)
	}
	if !allowed {
		return fmt.Errorf("order_service: owner %s: %w", owner, domain.ErrRateLimited)
	}
	return nil
}
