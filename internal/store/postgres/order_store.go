package postgres

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lantern-fi/suipool/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL. It is the
// client-side mirror of orders registered with the external indexer, so
// listings work even when the indexer is unreachable.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates a new OrderStore backed by the given connection pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// InsertLimitOrder records a newly placed limit order.
func (s *OrderStore) InsertLimitOrder(ctx context.Context, o domain.LimitOrder) error {
	const query = `
		INSERT INTO limit_orders (
			id, owner, recipient, coin_in_type, coin_out_type,
			amount_in, min_amount_out, expiry_ms, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.pool.Exec(ctx, query,
		o.ID, o.Owner, o.Recipient,
		string(o.CoinInType), string(o.CoinOutType),
		o.AmountIn.String(), o.MinAmountOut.String(),
		o.ExpiryMs, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert limit order %s: %w", o.ID, err)
	}
	return nil
}

// UpdateLimitOrderStatus moves a limit order to a new lifecycle state.
func (s *OrderStore) UpdateLimitOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE limit_orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("postgres: update limit order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: limit order %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListLimitOrdersByOwner returns the owner's limit orders, newest first.
func (s *OrderStore) ListLimitOrdersByOwner(ctx context.Context, owner string, opts domain.ListOpts) ([]domain.LimitOrder, error) {
	query := `
		SELECT id, owner, recipient, coin_in_type, coin_out_type,
			amount_in, min_amount_out, expiry_ms, status, created_at
		FROM limit_orders WHERE owner = $1 ORDER BY created_at DESC`
	args := []any{owner}
	argIdx := 2

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
		return nil, fmt.Errorf("postgres: list limit orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.LimitOrder
	for rows.Next() {
		var (
			o                     domain.LimitOrder
			inType, outType       string
			amountIn, minOut      string
			status                string
		)
		if err := rows.Scan(
			&o.ID, &o.Owner, &o.Recipient, &inType, &outType,
			&amountIn, &minOut, &o.ExpiryMs, &status, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan limit order: %w", err)
		}
		o.CoinInType = domain.CoinType(inType)
		o.CoinOutType = domain.CoinType(outType)
		o.Status = domain.OrderStatus(status)
		if o.AmountIn, err = parseNumeric(amountIn); err != nil {
			return nil, err
		}
		if o.MinAmountOut, err = parseNumeric(minOut); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// InsertDCAOrder records a newly placed DCA order.
func (s *OrderStore) InsertDCAOrder(ctx context.Context, o domain.DCAOrder) error {
	const query = `
		INSERT INTO dca_orders (
			id, owner, recipient, coin_in_type, coin_out_type,
			amount_per_tranche, tranche_count, tranches_done,
			interval_ms, min_amount_out, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		o.ID, o.Owner, o.Recipient,
		string(o.CoinInType), string(o.CoinOutType),
		o.AmountPerTranche.String(), o.TrancheCount, o.TranchesDone,
		o.Interval.Milliseconds(), o.MinAmountOut.String(),
		string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert dca order %s: %w", o.ID, err)
	}
	return nil
}

// UpdateDCAOrderStatus moves a DCA order to a new lifecycle state.
func (s *OrderStore) UpdateDCAOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE dca_orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("postgres: update dca order %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: dca order %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListDCAOrdersByOwner returns the owner's DCA orders, newest first.
func (s *OrderStore) ListDCAOrdersByOwner(ctx context.Context, owner string, opts domain.ListOpts) ([]domain.DCAOrder, error) {
	query := `
		SELECT id, owner, recipient, coin_in_type, coin_out_type,
			amount_per_tranche, tranche_count, tranches_done,
			interval_ms, min_amount_out, status, created_at
		FROM dca_orders WHERE owner = $1 ORDER BY created_at DESC`
	args := []any{owner}
	argIdx := 2

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
		return nil, fmt.Errorf("postgres: list dca orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.DCAOrder
	for rows.Next() {
		var (
			o                  domain.DCAOrder
			inType, outType    string
			perTranche, minOut string
			intervalMs         int64
			status             string
		)
		if err := rows.Scan(
			&o.ID, &o.Owner, &o.Recipient, &inType, &outType,
			&perTranche, &o.TrancheCount, &o.TranchesDone,
			&intervalMs, &minOut, &status, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan dca order: %w", err)
		}
		o.CoinInType = domain.CoinType(inType)
		o.CoinOutType = domain.CoinType(outType)
		o.Interval = time.Duration(intervalMs) * time.Millisecond
		o.Status = domain.OrderStatus(status)
		if o.AmountPerTranche, err = parseNumeric(perTranche); err != nil {
			return nil, err
		}
		if o.MinAmountOut, err = parseNumeric(minOut); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func parseNumeric(s string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("postgres: bad numeric %q", s)
	}
	return v, nil
}

// Compile-time interface check.
var _ domain.OrderStore = (*OrderStore)(nil)
