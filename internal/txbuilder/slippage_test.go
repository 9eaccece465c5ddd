package txbuilder

import (
	"errors"
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
)

func TestNormalizeSlippage(t *testing.T) {
	n, err := NormalizeSlippage(0.005)
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewInt(5_000_000_000_000_000), n)

	n, err = NormalizeSlippage(0)
	require.NoError(t, err)
	assert.True(t, n.IsZero())
}

func TestNormalizeSlippageRoundTrip(t *testing.T) {
	n, err := NormalizeSlippage(0.005)
	require.NoError(t, err)

	decoded := DecodeSlippage(n)
	assert.Equal(t, sdkmath.LegacyMustNewDecFromStr("0.005"), decoded)
}

func TestNormalizeSlippageRejectsOutOfRange(t *testing.T) {
	for _, s := range []float64{1.0, -0.1, 1.5, math.NaN()} {
		_, err := NormalizeSlippage(s)
		require.Error(t, err, "slippage %v", s)
		assert.True(t, errors.Is(err, domain.ErrInvalidSlippage))
	}
}
