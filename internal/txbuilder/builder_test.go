package txbuilder

import (
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
)

const (
	coinSUI  = domain.CoinType("0x2::sui::SUI")
	coinUSDC = domain.CoinType("0xabc::usdc::USDC")
	lpCoin   = domain.CoinType("0xdef::amm_lp::AmmLP")
)

func testAddresses() Addresses {
	return Addresses{
		PackageID:        "0xamm",
		ProtocolFeeVault: domain.ObjectRef{ObjectID: "0xfee", Version: 1, Digest: "d1"},
		Treasury:         domain.ObjectRef{ObjectID: "0xtre", Version: 1, Digest: "d2"},
		InsuranceFund:    domain.ObjectRef{ObjectID: "0xins", Version: 1, Digest: "d3"},
	}
}

func testPool() *domain.Pool {
	return &domain.Pool{
		ID:         "0xp00l",
		LPCoinType: lpCoin,
		LPSupply:   sdkmath.NewInt(1_000_000),
		Reserves: map[domain.CoinType]sdkmath.Int{
			coinSUI:  sdkmath.NewInt(500_000_000_000),
			coinUSDC: sdkmath.NewInt(1_000_000),
		},
		Ref: domain.ObjectRef{ObjectID: "0xp00l", Version: 9, Digest: "dp"},
	}
}

func coinSel(id string, balance int64) Selection {
	return Selection{
		Primary: domain.CoinObject{
			Ref:     domain.ObjectRef{ObjectID: id, Version: 1, Digest: "dc"},
			Type:    coinSUI,
			Balance: sdkmath.NewInt(balance),
		},
		Total: sdkmath.NewInt(balance),
	}
}

func TestNewBuilderRequiresAddresses(t *testing.T) {
	_, err := NewBuilder(Addresses{PackageID: "0xamm"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	_, err = NewBuilder(testAddresses())
	require.NoError(t, err)
}

func TestBuildSwapExactIn(t *testing.T) {
	b, err := NewBuilder(testAddresses())
	require.NoError(t, err)

	bundle, err := b.BuildSwapExactIn("0xsender", testPool(),
		coinSel("0xc01n", 1_000_000_000),
		coinSUI, coinUSDC,
		sdkmath.NewInt(1_990_000), 0.01, 50_000_000,
	)
	require.NoError(t, err)
	require.NoError(t, bundle.Validate())

	assert.Equal(t, "0xsender", bundle.Sender)
	assert.Equal(t, uint64(50_000_000), bundle.GasBudget)

	// pool + 3 protocol objects + coin + expected_out + slippage.
	require.Len(t, bundle.Inputs, 7)
	require.Len(t, bundle.Commands, 1)

	call := bundle.Commands[0].MoveCall
	require.NotNil(t, call)
	assert.Equal(t, "swap_exact_in", call.Function)
	assert.Equal(t, "amm_interface", call.Module)
	assert.Equal(t, []string{string(lpCoin), string(coinSUI), string(coinUSDC)}, call.TypeArguments)
	require.Len(t, call.Arguments, 7)
}

func TestBuildSwapMergesMultiCoinSelection(t *testing.T) {
	b, err := NewBuilder(testAddresses())
	require.NoError(t, err)

	sel := coinSel("0xc01n", 600_000_000)
	sel.Merge = []domain.CoinObject{
		{Ref: domain.ObjectRef{ObjectID: "0xc02n", Version: 1, Digest: "dc"}, Type: coinSUI, Balance: sdkmath.NewInt(400_000_000)},
	}
	sel.Total = sdkmath.NewInt(1_000_000_000)

	bundle, err := b.BuildSwapExactIn("0xsender", testPool(), sel,
		coinSUI, coinUSDC, sdkmath.NewInt(1_990_000), 0.01, 50_000_000)
	require.NoError(t, err)

	// MergeCoins must precede the entry-point call so the primary coin
	// carries the full amount when the swap executes.
	require.Len(t, bundle.Commands, 2)
	require.NotNil(t, bundle.Commands[0].MergeCoins)
	require.NotNil(t, bundle.Commands[1].MoveCall)
	require.NoError(t, bundle.Validate())
}

func TestBuildSwapRejectsBadSlippage(t *testing.T) {
	b, err := NewBuilder(testAddresses())
	require.NoError(t, err)

	bundle, err := b.BuildSwapExactIn("0xsender", testPool(),
		coinSel("0xc01n", 1), coinSUI, coinUSDC, sdkmath.NewInt(1), 1.0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidSlippage))
	assert.Nil(t, bundle)
}

func TestBuildDeposit(t *testing.T) {
	b, err := NewBuilder(testAddresses())
	require.NoError(t, err)

	bundle, err := b.BuildDeposit("0xsender", testPool(),
		[]Selection{coinSel("0xc01n", 1), coinSel("0xc02n", 2)},
		[]domain.CoinType{coinSUI, coinUSDC},
		sdkmath.NewInt(100), 0.005, 50_000_000,
	)
	require.NoError(t, err)

	call := bundle.Commands[len(bundle.Commands)-1].MoveCall
	require.NotNil(t, call)
	assert.Equal(t, "deposit_2_coins", call.Function)
	assert.Equal(t, []string{string(lpCoin), string(coinSUI), string(coinUSDC)}, call.TypeArguments)
	// pool + 3 protocol objects + 2 coins + expected_lp + slippage.
	assert.Len(t, call.Arguments, 8)
	require.NoError(t, bundle.Validate())
}

func TestBuildDepositArityMismatch(t *testing.T) {
	b, err := NewBuilder(testAddresses())
	require.NoError(t, err)

	// ids/types length skew.
	bundle, err := b.BuildDeposit("0xsender", testPool(),
		[]Selection{coinSel("0xc01n", 1)},
		[]domain.CoinType{coinSUI, coinUSDC},
		sdkmath.NewInt(100), 0.005, 1,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArityMismatch))
	assert.Nil(t, bundle)

	// Arity disagrees with the live pool's coin count.
	bundle, err = b.BuildDeposit("0xsender", testPool(),
		[]Selection{coinSel("0xc01n", 1)},
		[]domain.CoinType{coinSUI},
		sdkmath.NewInt(100), 0.005, 1,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArityMismatch))
	assert.Nil(t, bundle)
}

func TestBuildWithdraw(t *testing.T) {
	b, err := NewBuilder(testAddresses())
	require.NoError(t, err)

	lpSel := Selection{
		Primary: domain.CoinObject{
			Ref:     domain.ObjectRef{ObjectID: "0xlp", Version: 1, Digest: "dl"},
			Type:    lpCoin,
			Balance: sdkmath.NewInt(50),
		},
		Total: sdkmath.NewInt(50),
	}

	bundle, err := b.BuildWithdraw("0xsender", testPool(), lpSel,
		[]sdkmath.Int{sdkmath.NewInt(10), sdkmath.NewInt(20)},
		[]domain.CoinType{coinSUI, coinUSDC},
		0.005, 50_000_000,
	)
	require.NoError(t, err)

	call := bundle.Commands[0].MoveCall
	require.NotNil(t, call)
	assert.Equal(t, "withdraw_2_coins", call.Function)
	require.NoError(t, bundle.Validate())
}

func TestBuildWithdrawArityMismatch(t *testing.T) {
	b, err := NewBuilder(testAddresses())
	require.NoError(t, err)

	lpSel := coinSel("0xlp", 50)
	_, err = b.BuildWithdraw("0xsender", testPool(), lpSel,
		[]sdkmath.Int{sdkmath.NewInt(10)},
		[]domain.CoinType{coinSUI, coinUSDC},
		0.005, 1,
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrArityMismatch))
}

func TestBundleEncodesToBase64(t *testing.T) {
	b, err := NewBuilder(testAddresses())
	require.NoError(t, err)

	bundle, err := b.BuildSwapExactIn("0xsender", testPool(),
		coinSel("0xc01n", 1_000_000_000),
		coinSUI, coinUSDC, sdkmath.NewInt(1_990_000), 0.01, 50_000_000)
	require.NoError(t, err)

	encoded, err := bundle.EncodeBase64()
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}
