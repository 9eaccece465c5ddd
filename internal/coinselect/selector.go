// Package coinselect resolves user intents into concrete owned coin objects.
// Given a wallet and a required amount per coin type, it picks the smallest
// set of coin objects covering the amount; bundle assembly begins only after
// every required selection has resolved.
package coinselect

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	sdkmath "cosmossdk.io/math"
	"golang.org/x/sync/errgroup"

	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/txbuilder"
)

// CoinFetcher is the slice of the fullnode client the selector needs.
type CoinFetcher interface {
	// OwnedCoins lists the wallet's coin objects of the given type.
	OwnedCoins(ctx context.Context, owner string, coinType domain.CoinType) ([]domain.CoinObject, error)
}

// Selector picks owned coin objects to fund transactions.
type Selector struct {
	rpc    CoinFetcher
	logger *slog.Logger
}

// NewSelector creates a Selector over the given fetcher.
func NewSelector(rpc CoinFetcher, logger *slog.Logger) *Selector {
	return &Selector{
		rpc:    rpc,
		logger: logger.With(slog.String("component", "coinselect")),
	}
}

// CoinWithAmount returns a selection of owner's coinType objects whose
// combined balance covers amount, largest objects first to keep the merge
// set small. Fails with ErrInsufficientBalance when the wallet cannot cover
// the amount.
func (s *Selector) CoinWithAmount(
	ctx context.Context,
	owner string,
	coinType domain.CoinType,
	amount sdkmath.Int,
) (txbuilder.Selection, error) {
	if !amount.IsPositive() {
		return txbuilder.Selection{}, fmt.Errorf("coinselect: non-positive amount %s of %s: %w",
			amount, coinType, domain.ErrInsufficientBalance)
	}

	coins, err := s.rpc.OwnedCoins(ctx, owner, coinType)
	if err != nil {
		return txbuilder.Selection{}, fmt.Errorf("coinselect: fetch %s coins: %w", coinType, err)
	}

	sort.Slice(coins, func(i, j int) bool {
		return coins[i].Balance.GT(coins[j].Balance)
	})

	total := sdkmath.ZeroInt()
	var picked []domain.CoinObject
	for _, c := range coins {
		picked = append(picked, c)
		total = total.Add(c.Balance)
		if total.GTE(amount) {
			break
		}
	}

	if total.LT(amount) {
		return txbuilder.Selection{}, fmt.Errorf("coinselect: %s of %s needed, %s owned: %w",
			amount, coinType, total, domain.ErrInsufficientBalance)
	}

	sel := txbuilder.Selection{
		Primary: picked[0],
		Merge:   picked[1:],
		Total:   total,
	}
	s.logger.Debug("selected coins",
		slog.String("coin_type", string(coinType)),
		slog.String("amount", amount.String()),
		slog.Int("objects", len(picked)),
	)
	return sel, nil
}

// CoinsWithAmounts resolves one selection per (coinType, amount) pair,
// fetching all of them concurrently. Either every selection resolves, or the
// whole call fails and no partial result is returned.
func (s *Selector) CoinsWithAmounts(
	ctx context.Context,
	owner string,
	coinTypes []domain.CoinType,
	amounts []sdkmath.Int,
) ([]txbuilder.Selection, error) {
	if len(coinTypes) != len(amounts) {
		return nil, fmt.Errorf("coinselect: types/amounts %d/%d: %w",
			len(coinTypes), len(amounts), domain.ErrArityMismatch)
	}

	selections := make([]txbuilder.Selection, len(coinTypes))
	g, ctx := errgroup.WithContext(ctx)
	for i := range coinTypes {
		g.Go(func() error {
			sel, err := s.CoinWithAmount(ctx, owner, coinTypes[i], amounts[i])
			if err != nil {
				return err
			}
			selections[i] = sel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return selections, nil
}
