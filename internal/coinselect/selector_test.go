package coinselect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
)

const coinSUI = domain.CoinType("0x2::sui::SUI")

type fakeFetcher struct {
	coins map[domain.CoinType][]domain.CoinObject
	err   error
}

func (f *fakeFetcher) OwnedCoins(_ context.Context, _ string, coinType domain.CoinType) ([]domain.CoinObject, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.coins[coinType], nil
}

func coin(id string, balance int64) domain.CoinObject {
	return domain.CoinObject{
		Ref:     domain.ObjectRef{ObjectID: id, Version: 1, Digest: "d"},
		Type:    coinSUI,
		Balance: sdkmath.NewInt(balance),
	}
}

func newTestSelector(f CoinFetcher) *Selector {
	return NewSelector(f, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCoinWithAmountSingleObject(t *testing.T) {
	s := newTestSelector(&fakeFetcher{coins: map[domain.CoinType][]domain.CoinObject{
		coinSUI: {coin("0xa", 100), coin("0xb", 500)},
	}})

	sel, err := s.CoinWithAmount(context.Background(), "0xowner", coinSUI, sdkmath.NewInt(400))
	require.NoError(t, err)

	// The 500 coin alone covers the amount; no merge needed.
	assert.Equal(t, "0xb", sel.Primary.Ref.ObjectID)
	assert.Empty(t, sel.Merge)
	assert.Equal(t, sdkmath.NewInt(500), sel.Total)
}

func TestCoinWithAmountMergesDescending(t *testing.T) {
	s := newTestSelector(&fakeFetcher{coins: map[domain.CoinType][]domain.CoinObject{
		coinSUI: {coin("0xa", 100), coin("0xb", 300), coin("0xc", 250)},
	}})

	sel, err := s.CoinWithAmount(context.Background(), "0xowner", coinSUI, sdkmath.NewInt(600))
	require.NoError(t, err)

	assert.Equal(t, "0xb", sel.Primary.Ref.ObjectID)
	require.Len(t, sel.Merge, 2)
	assert.Equal(t, "0xc", sel.Merge[0].Ref.ObjectID)
	assert.Equal(t, "0xa", sel.Merge[1].Ref.ObjectID)
	assert.Equal(t, sdkmath.NewInt(650), sel.Total)
}

func TestCoinWithAmountInsufficientBalance(t *testing.T) {
	s := newTestSelector(&fakeFetcher{coins: map[domain.CoinType][]domain.CoinObject{
		coinSUI: {coin("0xa", 100)},
	}})

	_, err := s.CoinWithAmount(context.Background(), "0xowner", coinSUI, sdkmath.NewInt(400))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))
}

func TestCoinsWithAmountsJoinAll(t *testing.T) {
	usdc := domain.CoinType("0xabc::usdc::USDC")
	s := newTestSelector(&fakeFetcher{coins: map[domain.CoinType][]domain.CoinObject{
		coinSUI: {coin("0xa", 1000)},
		usdc: {{
			Ref:     domain.ObjectRef{ObjectID: "0xu", Version: 1, Digest: "d"},
			Type:    usdc,
			Balance: sdkmath.NewInt(50),
		}},
	}})

	sels, err := s.CoinsWithAmounts(context.Background(), "0xowner",
		[]domain.CoinType{coinSUI, usdc},
		[]sdkmath.Int{sdkmath.NewInt(500), sdkmath.NewInt(50)},
	)
	require.NoError(t, err)
	require.Len(t, sels, 2)
	assert.Equal(t, "0xa", sels[0].Primary.Ref.ObjectID)
	assert.Equal(t, "0xu", sels[1].Primary.Ref.ObjectID)
}

func TestCoinsWithAmountsFailsWhole(t *testing.T) {
	s := newTestSelector(&fakeFetcher{coins: map[domain.CoinType][]domain.CoinObject{
		coinSUI: {coin("0xa", 1000)},
		// No USDC at all.
	}})

	sels, err := s.CoinsWithAmounts(context.Background(), "0xowner",
		[]domain.CoinType{coinSUI, domain.CoinType("0xabc::usdc::USDC")},
		[]sdkmath.Int{sdkmath.NewInt(500), sdkmath.NewInt(50)},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))
	assert.Nil(t, sels)
}

func TestCoinsWithAmountsArityMismatch(t *testing.T) {
	s := newTestSelector(&fakeFetcher{})

	_, err := s.CoinsWithAmounts(context.Background(), "0xowner",
		[]domain.CoinType{coinSUI},
		[]sdkmath.Int{sdkmath.NewInt(1), sdkmath.NewInt(2)},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArityMismatch))
}
