package domain

import (
	"context"
	"io"
	"time"
)

// ListOpts carries pagination and time filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// EventStore persists classified pool trade events. Inserts are idempotent
// on (tx_digest, event_seq).
type EventStore interface {
	InsertTrades(ctx context.Context, events []PoolTradeEvent) error

	// ListTradesByPool returns trades for a pool ordered by timestamp
	// ascending, filtered by opts.
	ListTradesByPool(ctx context.Context, poolID string, opts ListOpts) ([]PoolTradeEvent, error)

	// ListTradesBefore returns up to limit trades older than cutoff,
	// oldest first. Used by the archiver.
	ListTradesBefore(ctx context.Context, cutoff time.Time, limit int) ([]PoolTradeEvent, error)

	// DeleteTradesBefore removes trades older than cutoff and reports how
	// many rows were deleted.
	DeleteTradesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// LastTimestamp returns the newest stored trade timestamp, or the zero
	// time when the store is empty.
	LastTimestamp(ctx context.Context) (time.Time, error)
}

// OrderStore persists the client-side record of limit and DCA orders placed
// through the indexer.
type OrderStore interface {
	InsertLimitOrder(ctx context.Context, o LimitOrder) error
	UpdateLimitOrderStatus(ctx context.Context, id string, status OrderStatus) error
	ListLimitOrdersByOwner(ctx context.Context, owner string, opts ListOpts) ([]LimitOrder, error)

	InsertDCAOrder(ctx context.Context, o DCAOrder) error
	UpdateDCAOrderStatus(ctx context.Context, id string, status OrderStatus) error
	ListDCAOrdersByOwner(ctx context.Context, owner string, opts ListOpts) ([]DCAOrder, error)
}

// BlobWriter uploads objects to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver moves aged rows out of hot storage into blobs.
type Archiver interface {
	// ArchiveTrades writes trades older than before to cold storage,
	// deletes them from the store, and returns the archived count.
	ArchiveTrades(ctx context.Context, before time.Time) (int64, error)
}
