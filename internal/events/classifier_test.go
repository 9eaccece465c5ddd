package events

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
)

var testTags = Tags{
	Swap:     "0xamm::events::SwapEvent",
	Deposit:  "0xamm::events::DepositEvent",
	Withdraw: "0xamm::events::WithdrawEvent",
}

func newTestClassifier() *Classifier {
	return NewClassifier(testTags, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func rawEvent(tag string, seq uint64, payload any) domain.RawEvent {
	data, _ := json.Marshal(payload)
	return domain.RawEvent{
		ID:          domain.EventID{TxDigest: "D1GEST", EventSeq: seq},
		Type:        tag,
		TimestampMs: 1_700_000_000_000,
		ParsedJSON:  data,
	}
}

func TestClassifySwap(t *testing.T) {
	c := newTestClassifier()

	out := c.Classify([]domain.RawEvent{
		rawEvent(testTags.Swap, 0, swapPayload{
			PoolID:    "0xp00l",
			TypeIn:    "0x2::sui::SUI",
			AmountIn:  "1000000000",
			TypeOut:   "0xabc::usdc::USDC",
			AmountOut: "2000000",
		}),
	})

	require.Len(t, out.Trades, 1)
	tr := out.Trades[0]
	assert.Equal(t, "0xp00l", tr.PoolID)
	assert.Equal(t, domain.CoinType("0x2::sui::SUI"), tr.TypeIn)
	assert.Equal(t, sdkmath.NewInt(1_000_000_000), tr.AmountIn)
	assert.Equal(t, sdkmath.NewInt(2_000_000), tr.AmountOut)
	assert.Equal(t, uint64(0), tr.ID.EventSeq)
}

func TestClassifyDepositAndWithdraw(t *testing.T) {
	c := newTestClassifier()

	out := c.Classify([]domain.RawEvent{
		rawEvent(testTags.Deposit, 0, depositPayload{
			PoolID:   "0xp00l",
			Types:    []string{"0x2::sui::SUI", "0xabc::usdc::USDC"},
			Deposits: []string{"5", "10"},
			LPMinted: "7",
		}),
		rawEvent(testTags.Withdraw, 1, withdrawPayload{
			PoolID:    "0xp00l",
			Types:     []string{"0x2::sui::SUI"},
			Withdrawn: []string{"3"},
			LPBurned:  "2",
		}),
	})

	require.Len(t, out.Deposits, 1)
	require.Len(t, out.Withdraws, 1)
	assert.Equal(t, sdkmath.NewInt(7), out.Deposits[0].LPMinted)
	assert.Equal(t, []sdkmath.Int{sdkmath.NewInt(5), sdkmath.NewInt(10)}, out.Deposits[0].Deposits)
	assert.Equal(t, sdkmath.NewInt(2), out.Withdraws[0].LPBurned)
}

func TestClassifyDropsUnrecognizedTags(t *testing.T) {
	c := newTestClassifier()

	out := c.Classify([]domain.RawEvent{
		rawEvent("0xother::events::StakeEvent", 0, map[string]string{"foo": "bar"}),
	})

	assert.Empty(t, out.Trades)
	assert.Empty(t, out.Deposits)
	assert.Empty(t, out.Withdraws)
}

func TestClassifySkipsMalformedPayload(t *testing.T) {
	c := newTestClassifier()

	// Bad amount string; the rest of the batch must survive.
	out := c.Classify([]domain.RawEvent{
		rawEvent(testTags.Swap, 0, swapPayload{
			PoolID: "0xp00l", TypeIn: "a", AmountIn: "not-a-number", TypeOut: "b", AmountOut: "1",
		}),
		rawEvent(testTags.Swap, 1, swapPayload{
			PoolID: "0xp00l", TypeIn: "a", AmountIn: "1", TypeOut: "b", AmountOut: "1",
		}),
	})

	require.Len(t, out.Trades, 1)
	assert.Equal(t, uint64(1), out.Trades[0].ID.EventSeq)
}

func TestClassifyDepositLengthSkewSkipped(t *testing.T) {
	c := newTestClassifier()

	out := c.Classify([]domain.RawEvent{
		rawEvent(testTags.Deposit, 0, depositPayload{
			PoolID:   "0xp00l",
			Types:    []string{"a", "b"},
			Deposits: []string{"1"},
			LPMinted: "1",
		}),
	})

	assert.Empty(t, out.Deposits)
}
