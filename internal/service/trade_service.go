package service

import (
	"context"
	"fmt"
	"log/slog"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/txbuilder"
)

// Quoter computes expected swap output against live pool state. The external
// indexer implements it; anything that can price against the pool invariant
// would do.
type Quoter interface {
	QuoteSwapOut(ctx context.Context, poolID string, coinIn, coinOut domain.CoinType, amountIn sdkmath.Int) (sdkmath.Int, error)
}

// CoinSelector resolves required amounts into concrete owned coin objects.
type CoinSelector interface {
	CoinWithAmount(ctx context.Context, owner string, coinType domain.CoinType, amount sdkmath.Int) (txbuilder.Selection, error)
	CoinsWithAmounts(ctx context.Context, owner string, coinTypes []domain.CoinType, amounts []sdkmath.Int) ([]txbuilder.Selection, error)
}

// SwapRequest describes an exact-in swap intent.
type SwapRequest struct {
	Sender    string
	PoolID    string
	CoinIn    domain.CoinType
	CoinOut   domain.CoinType
	AmountIn  sdkmath.Int
	Slippage  float64
	GasBudget uint64
}

// DepositRequest describes an all-coin deposit intent. ExpectedLPOut is the
// caller's estimate of LP coins minted; slippage bounds the realized amount.
type DepositRequest struct {
	Sender        string
	PoolID        string
	CoinTypes     []domain.CoinType
	Amounts       []sdkmath.Int
	ExpectedLPOut sdkmath.Int
	Slippage      float64
	GasBudget     uint64
}

// WithdrawRequest describes an all-coin withdraw intent.
type WithdrawRequest struct {
	Sender             string
	PoolID             string
	LPAmount           sdkmath.Int
	CoinOutTypes       []domain.CoinType
	ExpectedAmountsOut []sdkmath.Int
	Slippage           float64
	GasBudget          uint64
}

// TradeService turns user trade intents into ready-to-sign transaction
// bundles: it fetches the live pool, quotes the expected outcome, resolves
// owned coins, and hands everything to the bundle builder.
type TradeService struct {
	pools    PoolFetcher
	quoter   Quoter
	selector CoinSelector
	builder  *txbuilder.Builder
	logger   *slog.Logger
}

// NewTradeService creates a TradeService with all required dependencies.
func NewTradeService(
	pools PoolFetcher,
	quoter Quoter,
	selector CoinSelector,
	builder *txbuilder.Builder,
	logger *slog.Logger,
) *TradeService {
	return &TradeService{
		pools:    pools,
		quoter:   quoter,
		selector: selector,
		builder:  builder,
		logger:   logger.With(slog.String("component", "trade_service")),
	}
}

// BuildSwap assembles a slippage-protected exact-in swap bundle. The
// expected output comes from the quoter against the live pool state.
func (s *TradeService) BuildSwap(ctx context.Context, req SwapRequest) (*domain.TransactionBundle, error) {
	pool, err := s.pools.GetPool(ctx, req.PoolID)
	if err != nil {
		return nil, fmt.Errorf("trade_service: get pool %s: %w", req.PoolID, err)
	}

	expectedOut, err := s.quoter.QuoteSwapOut(ctx, req.PoolID, req.CoinIn, req.CoinOut, req.AmountIn)
	if err != nil {
		return nil, fmt.Errorf("trade_service: quote swap: %w", err)
	}

	coinIn, err := s.selector.CoinWithAmount(ctx, req.Sender, req.CoinIn, req.AmountIn)
	if err != nil {
		return nil, fmt.Errorf("trade_service: select coins: %w", err)
	}

	bundle, err := s.builder.BuildSwapExactIn(req.Sender, pool, coinIn,
		req.CoinIn, req.CoinOut, expectedOut, req.Slippage, req.GasBudget)
	if err != nil {
		return nil, fmt.Errorf("trade_service: build swap: %w", err)
	}

	s.logger.InfoContext(ctx, "built swap bundle",
		slog.String("pool_id", req.PoolID),
		slog.String("coin_in", string(req.CoinIn)),
		slog.String("amount_in", req.AmountIn.String()),
		slog.String("expected_out", expectedOut.String()),
	)
	return bundle, nil
}

// BuildDeposit assembles an all-coin deposit bundle. Every coin selection
// must resolve before assembly begins; a single uncoverable amount fails the
// whole build.
func (s *TradeService) BuildDeposit(ctx context.Context, req DepositRequest) (*domain.TransactionBundle, error) {
	pool, err := s.pools.GetPool(ctx, req.PoolID)
	if err != nil {
		return nil, fmt.Errorf("trade_service: get pool %s: %w", req.PoolID, err)
	}

	selections, err := s.selector.CoinsWithAmounts(ctx, req.Sender, req.CoinTypes, req.Amounts)
	if err != nil {
		return nil, fmt.Errorf("trade_service: select coins: %w", err)
	}

	bundle, err := s.builder.BuildDeposit(req.Sender, pool, selections,
		req.CoinTypes, req.ExpectedLPOut, req.Slippage, req.GasBudget)
	if err != nil {
		return nil, fmt.Errorf("trade_service: build deposit: %w", err)
	}

	s.logger.InfoContext(ctx, "built deposit bundle",
		slog.String("pool_id", req.PoolID),
		slog.Int("coins", len(req.CoinTypes)),
	)
	return bundle, nil
}

// BuildWithdraw assembles an all-coin withdraw bundle funded by the sender's
// LP coins.
func (s *TradeService) BuildWithdraw(ctx context.Context, req WithdrawRequest) (*domain.TransactionBundle, error) {
	pool, err := s.pools.GetPool(ctx, req.PoolID)
	if err != nil {
		return nil, fmt.Errorf("trade_service: get pool %s: %w", req.PoolID, err)
	}

	lpCoin, err := s.selector.CoinWithAmount(ctx, req.Sender, pool.LPCoinType, req.LPAmount)
	if err != nil {
		return nil, fmt.Errorf("trade_service: select lp coins: %w", err)
	}

	bundle, err := s.builder.BuildWithdraw(req.Sender, pool, lpCoin,
		req.ExpectedAmountsOut, req.CoinOutTypes, req.Slippage, req.GasBudget)
	if err != nil {
		return nil, fmt.Errorf("trade_service: build withdraw: %w", err)
	}

	s.logger.InfoContext(ctx, "built withdraw bundle",
		slog.String("pool_id", req.PoolID),
		slog.String("lp_amount", req.LPAmount.String()),
	)
	return bundle, nil
}
