package txbuilder

import (
	"fmt"
	"math"
	"strconv"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
)

// slippagePrecision is the fixed-point scale of the on-chain slippage
// representation: a fraction scaled by 1e18.
const slippagePrecision = 18

// NormalizeSlippage maps a fractional tolerance in [0, 1) to the platform's
// 1e18 fixed-point integer, rounding to the nearest representable value.
// Values outside the range (including NaN) fail with ErrInvalidSlippage.
func NormalizeSlippage(s float64) (sdkmath.Int, error) {
	if math.IsNaN(s) || s < 0 || s >= 1 {
		return sdkmath.Int{}, fmt.Errorf("txbuilder: slippage %v: %w", s, domain.ErrInvalidSlippage)
	}
	dec, err := sdkmath.LegacyNewDecFromStr(strconv.FormatFloat(s, 'f', slippagePrecision, 64))
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("txbuilder: slippage %v: %w", s, domain.ErrInvalidSlippage)
	}
	return sdkmath.NewIntFromBigInt(dec.BigInt()), nil
}

// DecodeSlippage is the inverse of NormalizeSlippage under the platform's
// fixed-point convention.
func DecodeSlippage(n sdkmath.Int) sdkmath.LegacyDec {
	return sdkmath.LegacyNewDecFromIntWithPrec(n, slippagePrecision)
}
