// Package events classifies raw protocol events into typed pool records.
// The classifier is a filter over a heterogeneous event stream: it matches
// each event's structured type tag against the registered handlers and
// silently skips everything else.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"

	sdkmath "cosmossdk.io/math"

	"github.com/lantern-fi/suipool/internal/domain"
)

// Tags names the protocol's event types as fully-qualified tags
// ("0xpkg::events::SwapEvent"). They come from configuration since the
// package address differs per deployment.
type Tags struct {
	Swap     string
	Deposit  string
	Withdraw string
}

// Classified holds the typed records produced from one batch of raw events.
type Classified struct {
	Trades    []domain.PoolTradeEvent
	Deposits  []domain.PoolDepositEvent
	Withdraws []domain.PoolWithdrawEvent
}

type parseFunc func(c *Classifier, ev domain.RawEvent, out *Classified) error

// Classifier maps raw events to typed records by event type tag.
type Classifier struct {
	registry map[string]parseFunc
	logger   *slog.Logger
}

// NewClassifier creates a Classifier for the given event tags. Empty tags
// are not registered, so their events fall through as unrecognized.
func NewClassifier(tags Tags, logger *slog.Logger) *Classifier {
	c := &Classifier{
		registry: make(map[string]parseFunc, 3),
		logger:   logger.With(slog.String("component", "classifier")),
	}
	if tags.Swap != "" {
		c.registry[tags.Swap] = parseSwap
	}
	if tags.Deposit != "" {
		c.registry[tags.Deposit] = parseDeposit
	}
	if tags.Withdraw != "" {
		c.registry[tags.Withdraw] = parseWithdraw
	}
	return c
}

// Classify runs every raw event through the registry. Unrecognized tags are
// dropped. A recognized event with a malformed payload is skipped with a
// warning rather than failing the batch; the stream is externally sourced
// and one bad payload must not poison ingestion.
func (c *Classifier) Classify(raw []domain.RawEvent) Classified {
	var out Classified
	for _, ev := range raw {
		parse, ok := c.registry[ev.Type]
		if !ok {
			continue
		}
		if err := parse(c, ev, &out); err != nil {
			c.logger.Warn("skipping malformed event",
				slog.String("type", ev.Type),
				slog.String("tx_digest", ev.ID.TxDigest),
				slog.String("error", err.Error()),
			)
		}
	}
	return out
}

// Amounts arrive as decimal strings in the platform's event JSON.
func parseAmount(s string) (sdkmath.Int, error) {
	n, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("events: bad amount %q", s)
	}
	return n, nil
}

func parseAmounts(ss []string) ([]sdkmath.Int, error) {
	out := make([]sdkmath.Int, len(ss))
	for i, s := range ss {
		n, err := parseAmount(s)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func coinTypes(ss []string) []domain.CoinType {
	out := make([]domain.CoinType, len(ss))
	for i, s := range ss {
		out[i] = domain.CoinType(s)
	}
	return out
}

type swapPayload struct {
	PoolID    string `json:"pool_id"`
	TypeIn    string `json:"type_in"`
	AmountIn  string `json:"amount_in"`
	TypeOut   string `json:"type_out"`
	AmountOut string `json:"amount_out"`
}

func parseSwap(c *Classifier, ev domain.RawEvent, out *Classified) error {
	var p swapPayload
	if err := json.Unmarshal(ev.ParsedJSON, &p); err != nil {
		return fmt.Errorf("events: decode swap payload: %w", err)
	}
	amountIn, err := parseAmount(p.AmountIn)
	if err != nil {
		return err
	}
	amountOut, err := parseAmount(p.AmountOut)
	if err != nil {
		return err
	}
	out.Trades = append(out.Trades, domain.PoolTradeEvent{
		ID:          ev.ID,
		PoolID:      p.PoolID,
		TypeIn:      domain.CoinType(p.TypeIn),
		AmountIn:    amountIn,
		TypeOut:     domain.CoinType(p.TypeOut),
		AmountOut:   amountOut,
		TimestampMs: ev.TimestampMs,
	})
	return nil
}

type depositPayload struct {
	PoolID   string   `json:"pool_id"`
	Types    []string `json:"types"`
	Deposits []string `json:"deposits"`
	LPMinted string   `json:"lp_coins_minted"`
}

func parseDeposit(c *Classifier, ev domain.RawEvent, out *Classified) error {
	var p depositPayload
	if err := json.Unmarshal(ev.ParsedJSON, &p); err != nil {
		return fmt.Errorf("events: decode deposit payload: %w", err)
	}
	if len(p.Types) != len(p.Deposits) {
		return fmt.Errorf("events: deposit types/amounts length skew (%d/%d)", len(p.Types), len(p.Deposits))
	}
	deposits, err := parseAmounts(p.Deposits)
	if err != nil {
		return err
	}
	minted, err := parseAmount(p.LPMinted)
	if err != nil {
		return err
	}
	out.Deposits = append(out.Deposits, domain.PoolDepositEvent{
		ID:          ev.ID,
		PoolID:      p.PoolID,
		Types:       coinTypes(p.Types),
		Deposits:    deposits,
		LPMinted:    minted,
		TimestampMs: ev.TimestampMs,
	})
	return nil
}

type withdrawPayload struct {
	PoolID    string   `json:"pool_id"`
	Types     []string `json:"types"`
	Withdrawn []string `json:"withdrawn"`
	LPBurned  string   `json:"lp_coins_burned"`
}

func parseWithdraw(c *Classifier, ev domain.RawEvent, out *Classified) error {
	var p withdrawPayload
	if err := json.Unmarshal(ev.ParsedJSON, &p); err != nil {
		return fmt.Errorf("events: decode withdraw payload: %w", err)
	}
	if len(p.Types) != len(p.Withdrawn) {
		return fmt.Errorf("events: withdraw types/amounts length skew (%d/%d)", len(p.Types), len(p.Withdrawn))
	}
	withdrawn, err := parseAmounts(p.Withdrawn)
	if err != nil {
		return err
	}
	burned, err := parseAmount(p.LPBurned)
	if err != nil {
		return err
	}
	out.Withdraws = append(out.Withdraws, domain.PoolWithdrawEvent{
		ID:          ev.ID,
		PoolID:      p.PoolID,
		Types:       coinTypes(p.Types),
		Withdrawn:   withdrawn,
		LPBurned:    burned,
		TimestampMs: ev.TimestampMs,
	})
	return nil
}
