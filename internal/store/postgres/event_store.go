package postgres

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lantern-fi/suipool/internal/domain"
)

// EventStore implements domain.EventStore using PostgreSQL.
type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore creates a new EventStore backed by the given connection pool.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

const tradeSelectCols = `tx_digest, event_seq, pool_id, type_in, amount_in,
	type_out, amount_out, timestamp_ms`

func scanTradeRows(rows pgx.Rows) ([]domain.PoolTradeEvent, error) {
	var trades []domain.PoolTradeEvent
	for rows.Next() {
		var (
			t                   domain.PoolTradeEvent
			amountIn, amountOut string
			typeIn, typeOut     string
		)
		if err := rows.Scan(
			&t.ID.TxDigest, &t.ID.EventSeq, &t.PoolID,
			&typeIn, &amountIn, &typeOut, &amountOut,
			&t.TimestampMs,
		); err != nil {
			return nil, err
		}
		in, ok := sdkmath.NewIntFromString(amountIn)
		if !ok {
			return nil, fmt.Errorf("bad amount_in %q for %s", amountIn, t.ID.TxDigest)
		}
		out, ok := sdkmath.NewIntFromString(amountOut)
		if !ok {
			return nil, fmt.Errorf("bad amount_out %q for %s", amountOut, t.ID.TxDigest)
		}
		t.TypeIn = domain.CoinType(typeIn)
		t.TypeOut = domain.CoinType(typeOut)
		t.AmountIn = in
		t.AmountOut = out
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// InsertTrades inserts classified trade events using a pgx Batch. Duplicates
// (same tx_digest, event_seq) are silently skipped via ON CONFLICT DO NOTHING.
func (s *EventStore) InsertTrades(ctx context.Context, events []domain.PoolTradeEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	const query = `
		INSERT INTO pool_trade_events (
			tx_digest, event_seq, pool_id,
			type_in, amount_in, type_out, amount_out,
			timestamp_ms
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8
		) ON CONFLICT (tx_digest, event_seq) DO NOTHING`

	for _, e := range events {
		batch.Queue(query,
			e.ID.TxDigest, e.ID.EventSeq, e.PoolID,
			string(e.TypeIn), e.AmountIn.String(),
			string(e.TypeOut), e.AmountOut.String(),
			e.TimestampMs,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: insert trade batch item %d: %w", i, err)
		}
	}
	return nil
}

// ListTradesByPool returns trades for a pool ordered by timestamp ascending,
// with pagination and optional time filtering.
func (s *EventStore) ListTradesByPool(ctx context.Context, poolID string, opts domain.ListOpts) ([]domain.PoolTradeEvent, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM pool_trade_events WHERE pool_id = $1`
	args := []any{poolID}
	argIdx := 2

	if opts.Since != nil {
		query += fmt.Sprintf(" AND timestamp_ms >= $%d", argIdx)
		args = append(args, opts.Since.UnixMilli())
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND timestamp_ms <= $%d", argIdx)
		args = append(args, opts.Until.UnixMilli())
		argIdx++
	}

	query += " ORDER BY timestamp_ms ASC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades by pool: %w", err)
	}
	defer rows.Close()

	trades, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trades by pool: %w", err)
	}
	return trades, nil
}

// ListTradesBefore returns up to limit trades older than cutoff, oldest first.
func (s *EventStore) ListTradesBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.PoolTradeEvent, error) {
	query := `SELECT ` + tradeSelectCols + `
		FROM pool_trade_events WHERE timestamp_ms < $1 ORDER BY timestamp_ms ASC`
	args := []any{cutoff.UnixMilli()}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades before: %w", err)
	}
	defer rows.Close()

	trades, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trades before: %w", err)
	}
	return trades, nil
}

// DeleteTradesBefore deletes trades older than cutoff. Returns the number deleted.
func (s *EventStore) DeleteTradesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM pool_trade_events WHERE timestamp_ms < $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("postgres: delete trades before: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LastTimestamp returns the most recent trade timestamp, or the zero time if
// no trades exist.
func (s *EventStore) LastTimestamp(ctx context.Context) (time.Time, error) {
	var ms *int64
	err := s.pool.QueryRow(ctx,
		"SELECT MAX(timestamp_ms) FROM pool_trade_events").Scan(&ms)
	if err != nil {
		return time.Time{}, fmt.Errorf("postgres: get last trade timestamp: %w", err)
	}
	if ms == nil {
		return time.Time{}, nil
	}
	return time.UnixMilli(*ms).UTC(), nil
}

// Compile-time interface check.
var _ domain.EventStore = (*EventStore)(nil)
