package domain

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"
)

// EventID uniquely identifies an emitted event as (transaction digest,
// sequence within the transaction). It is the dedup key for the event store.
type EventID struct {
	TxDigest string `json:"tx_digest"`
	EventSeq uint64 `json:"event_seq"`
}

// RawEvent is an event exactly as returned by the fullnode: a structured
// type tag plus the undecoded JSON payload. The classifier turns these into
// the typed records below.
type RawEvent struct {
	ID          EventID         `json:"id"`
	Type        string          `json:"type"`
	TimestampMs int64           `json:"timestamp_ms"`
	ParsedJSON  json.RawMessage `json:"parsed_json"`
}

// PoolTradeEvent is one executed swap against a pool. Append-only; ordering
// by timestamp is preserved by the store and relied on for bucketing.
type PoolTradeEvent struct {
	ID          EventID     `json:"id"`
	PoolID      string      `json:"pool_id"`
	TypeIn      CoinType    `json:"type_in"`
	AmountIn    sdkmath.Int `json:"amount_in"`
	TypeOut     CoinType    `json:"type_out"`
	AmountOut   sdkmath.Int `json:"amount_out"`
	TimestampMs int64       `json:"timestamp_ms"`
}

// PoolDepositEvent is one multi-coin deposit into a pool.
type PoolDepositEvent struct {
	ID          EventID       `json:"id"`
	PoolID      string        `json:"pool_id"`
	Types       []CoinType    `json:"types"`
	Deposits    []sdkmath.Int `json:"deposits"`
	LPMinted    sdkmath.Int   `json:"lp_minted"`
	TimestampMs int64         `json:"timestamp_ms"`
}

// PoolWithdrawEvent is one multi-coin withdraw from a pool.
type PoolWithdrawEvent struct {
	ID          EventID       `json:"id"`
	PoolID      string        `json:"pool_id"`
	Types       []CoinType    `json:"types"`
	Withdrawn   []sdkmath.Int `json:"withdrawn"`
	LPBurned    sdkmath.Int   `json:"lp_burned"`
	TimestampMs int64         `json:"timestamp_ms"`
}
