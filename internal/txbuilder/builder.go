// Package txbuilder assembles atomic transaction bundles for the CMMM
// protocol's swap, deposit and withdraw entry points. The builder only
// produces in-memory descriptions; signing and submission happen elsewhere.
package txbuilder

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
)

// ammModule is the protocol's entry-point module.
const ammModule = "amm_interface"

// Addresses holds the protocol's shared objects, fixed per deployment and
// required by every entry point.
type Addresses struct {
	PackageID        string
	ProtocolFeeVault domain.ObjectRef
	Treasury         domain.ObjectRef
	InsuranceFund    domain.ObjectRef
}

func (a Addresses) validate() error {
	switch {
	case a.PackageID == "":
		return fmt.Errorf("txbuilder: package id missing: %w", domain.ErrConfiguration)
	case a.ProtocolFeeVault.ObjectID == "":
		return fmt.Errorf("txbuilder: protocol fee vault missing: %w", domain.ErrConfiguration)
	case a.Treasury.ObjectID == "":
		return fmt.Errorf("txbuilder: treasury missing: %w", domain.ErrConfiguration)
	case a.InsuranceFund.ObjectID == "":
		return fmt.Errorf("txbuilder: insurance fund missing: %w", domain.ErrConfiguration)
	}
	return nil
}

// Selection is a resolved set of owned coin objects covering a requested
// amount: Primary plus zero or more coins to merge into it. Produced by the
// coin-selection collaborator before bundle assembly begins.
type Selection struct {
	Primary domain.CoinObject
	Merge   []domain.CoinObject
	Total   sdkmath.Int
}

// Builder deterministically assembles one bundle per user intent.
type Builder struct {
	addr Addresses
}

// NewBuilder creates a Builder, failing immediately when any required
// protocol address is missing.
func NewBuilder(addr Addresses) (*Builder, error) {
	if err := addr.validate(); err != nil {
		return nil, err
	}
	return &Builder{addr: addr}, nil
}

// sharedInputs adds the pool and protocol objects every entry point takes,
// in their fixed argument order.
func (b *Builder) sharedInputs(bundle *domain.TransactionBundle, pool *domain.Pool) []domain.Argument {
	return []domain.Argument{
		bundle.AddObjectInput(pool.Ref),
		bundle.AddObjectInput(b.addr.ProtocolFeeVault),
		bundle.AddObjectInput(b.addr.Treasury),
		bundle.AddObjectInput(b.addr.InsuranceFund),
	}
}

// coinInput adds the selection's primary coin as an input and, when the
// selection spans several objects, a MergeCoins command folding the rest
// into it. The returned argument always references the full selected value.
func (b *Builder) coinInput(bundle *domain.TransactionBundle, sel Selection) domain.Argument {
	primary := bundle.AddObjectInput(sel.Primary.Ref)
	if len(sel.Merge) == 0 {
		return primary
	}
	sources := make([]domain.Argument, len(sel.Merge))
	for i, c := range sel.Merge {
		sources[i] = bundle.AddObjectInput(c.Ref)
	}
	bundle.AddCommand(domain.Command{MergeCoins: &domain.MergeCoins{
		Destination: primary,
		Sources:     sources,
	}})
	return primary
}

// BuildSwapExactIn assembles a swap_exact_in bundle. coinIn must already
// cover at least the traded amount; the coin-selection collaborator
// guarantees that and it is not re-validated here. expectedOut and the
// normalized slippage bound the realized output on-chain.
func (b *Builder) BuildSwapExactIn(
	sender string,
	pool *domain.Pool,
	coinIn Selection,
	coinInType, coinOutType domain.CoinType,
	expectedOut sdkmath.Int,
	slippage float64,
	gasBudget uint64,
) (*domain.TransactionBundle, error) {
	tolerance, err := NormalizeSlippage(slippage)
	if err != nil {
		return nil, err
	}

	bundle := &domain.TransactionBundle{Sender: sender, GasBudget: gasBudget}
	args := b.sharedInputs(bundle, pool)
	args = append(args, b.coinInput(bundle, coinIn))

	expectedArg, err := bundle.AddPureInput(expectedOut.String())
	if err != nil {
		return nil, err
	}
	slippageArg, err := bundle.AddPureInput(tolerance.String())
	if err != nil {
		return nil, err
	}
	args = append(args, expectedArg, slippageArg)

	bundle.AddCommand(domain.Command{MoveCall: &domain.MoveCall{
		Package:       b.addr.PackageID,
		Module:        ammModule,
		Function:      "swap_exact_in",
		TypeArguments: []string{string(pool.LPCoinType), string(coinInType), string(coinOutType)},
		Arguments:     args,
	}})

	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// BuildDeposit assembles a deposit_<N>_coins bundle for an all-coin deposit.
// The coin list must match in length and agree with the live pool snapshot's
// coin count; either skew fails with ErrArityMismatch before any assembly.
func (b *Builder) BuildDeposit(
	sender string,
	pool *domain.Pool,
	coins []Selection,
	coinTypes []domain.CoinType,
	expectedLPOut sdkmath.Int,
	slippage float64,
	gasBudget uint64,
) (*domain.TransactionBundle, error) {
	if len(coins) != len(coinTypes) {
		return nil, fmt.Errorf("txbuilder: deposit coins/types %d/%d: %w",
			len(coins), len(coinTypes), domain.ErrArityMismatch)
	}
	if len(coinTypes) != pool.CoinCount() {
		return nil, fmt.Errorf("txbuilder: deposit arity %d against %d-coin pool %s: %w",
			len(coinTypes), pool.CoinCount(), pool.ID, domain.ErrArityMismatch)
	}
	tolerance, err := NormalizeSlippage(slippage)
	if err != nil {
		return nil, err
	}

	bundle := &domain.TransactionBundle{Sender: sender, GasBudget: gasBudget}
	args := b.sharedInputs(bundle, pool)
	for _, sel := range coins {
		args = append(args, b.coinInput(bundle, sel))
	}

	expectedArg, err := bundle.AddPureInput(expectedLPOut.String())
	if err != nil {
		return nil, err
	}
	slippageArg, err := bundle.AddPureInput(tolerance.String())
	if err != nil {
		return nil, err
	}
	args = append(args, expectedArg, slippageArg)

	typeArgs := make([]string, 0, len(coinTypes)+1)
	typeArgs = append(typeArgs, string(pool.LPCoinType))
	for _, ct := range coinTypes {
		typeArgs = append(typeArgs, string(ct))
	}

	bundle.AddCommand(domain.Command{MoveCall: &domain.MoveCall{
		Package:       b.addr.PackageID,
		Module:        ammModule,
		Function:      fmt.Sprintf("deposit_%d_coins", len(coinTypes)),
		TypeArguments: typeArgs,
		Arguments:     args,
	}})

	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// BuildWithdraw assembles a withdraw_<N>_coins bundle, the symmetric inverse
// of BuildDeposit: the LP coin goes in, expectedAmountsOut bound what comes
// back per coin.
func (b *Builder) BuildWithdraw(
	sender string,
	pool *domain.Pool,
	lpCoin Selection,
	expectedAmountsOut []sdkmath.Int,
	coinOutTypes []domain.CoinType,
	slippage float64,
	gasBudget uint64,
) (*domain.TransactionBundle, error) {
	if len(expectedAmountsOut) != len(coinOutTypes) {
		return nil, fmt.Errorf("txbuilder: withdraw amounts/types %d/%d: %w",
			len(expectedAmountsOut), len(coinOutTypes), domain.ErrArityMismatch)
	}
	if len(coinOutTypes) != pool.CoinCount() {
		return nil, fmt.Errorf("txbuilder: withdraw arity %d against %d-coin pool %s: %w",
			len(coinOutTypes), pool.CoinCount(), pool.ID, domain.ErrArityMismatch)
	}
	tolerance, err := NormalizeSlippage(slippage)
	if err != nil {
		return nil, err
	}

	bundle := &domain.TransactionBundle{Sender: sender, GasBudget: gasBudget}
	args := b.sharedInputs(bundle, pool)
	args = append(args, b.coinInput(bundle, lpCoin))

	expected := make([]string, len(expectedAmountsOut))
	for i, n := range expectedAmountsOut {
		expected[i] = n.String()
	}
	expectedArg, err := bundle.AddPureInput(expected)
	if err != nil {
		return nil, err
	}
	slippageArg, err := bundle.AddPureInput(tolerance.String())
	if err != nil {
		return nil, err
	}
	args = append(args, expectedArg, slippageArg)

	typeArgs := make([]string, 0, len(coinOutTypes)+1)
	typeArgs = append(typeArgs, string(pool.LPCoinType))
	for _, ct := range coinOutTypes {
		typeArgs = append(typeArgs, string(ct))
	}

	bundle.AddCommand(domain.Command{MoveCall: &domain.MoveCall{
		Package:       b.addr.PackageID,
		Module:        ammModule,
		Function:      fmt.Sprintf("withdraw_%d_coins", len(coinOutTypes)),
		TypeArguments: typeArgs,
		Arguments:     args,
	}})

	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return bundle, nil
}
