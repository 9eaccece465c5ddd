package pricing

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
	lpCoin   = domain.CoinType("0xdef::amm_lp::AmmLP<0x2::sui::SUI,0xabc::usdc::USDC>")
)

func dec(s string) sdkmath.LegacyDec {
	return sdkmath.LegacyMustNewDecFromStr(s)
}

func TestResolvePrimaryAsset(t *testing.T) {
	cls := NewClassifier("amm_lp")

	p, err := Resolve(coinSUI, cls,
		[]domain.CoinType{lpCoin}, []sdkmath.LegacyDec{dec("10.5")},
		[]domain.CoinType{coinUSDC, coinSUI}, []sdkmath.LegacyDec{dec("1.0"), dec("2.0")},
	)
	require.NoError(t, err)
	assert.Equal(t, dec("2.0"), p)
}

func TestResolveLPCoin(t *testing.T) {
	cls := NewClassifier("amm_lp")

	p, err := Resolve(lpCoin, cls,
		[]domain.CoinType{lpCoin}, []sdkmath.LegacyDec{dec("10.5")},
		[]domain.CoinType{coinUSDC, coinSUI}, []sdkmath.LegacyDec{dec("1.0"), dec("2.0")},
	)
	require.NoError(t, err)
	assert.Equal(t, dec("10.5"), p)
}

func TestResolveMissingPriceFails(t *testing.T) {
	cls := NewClassifier("amm_lp")

	// SUI is classified as a primary asset, so its presence in the LP array
	// must not satisfy the lookup.
	_, err := Resolve(coinSUI, cls,
		[]domain.CoinType{coinSUI}, []sdkmath.LegacyDec{dec("2.0")},
		[]domain.CoinType{coinUSDC}, []sdkmath.LegacyDec{dec("1.0")},
	)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPriceNotFound))
}

func TestClassifierUsesModuleSegment(t *testing.T) {
	cls := NewClassifier("amm_lp")

	assert.True(t, cls.IsLPCoin(lpCoin))
	assert.False(t, cls.IsLPCoin(coinSUI))
	assert.False(t, cls.IsLPCoin(domain.CoinType("malformed")))
}
