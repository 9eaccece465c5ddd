package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lantern-fi/suipool/internal/domain"
)

// TradeArchiveStore is the slice of the event store the archiver needs.
type TradeArchiveStore interface {
	// ListTradesBefore returns up to limit trades older than cutoff,
	// oldest first. A limit of 0 means no limit.
	ListTradesBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.PoolTradeEvent, error)

	// DeleteTradesBefore removes trades older than cutoff and reports how
	// many rows were deleted.
	DeleteTradesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiveImpl implements domain.Archiver: it queries aged trade events,
// serializes them to JSONL, uploads the file to S3, and deletes the rows
// only after the upload succeeded.
type ArchiveImpl struct {
	writer domain.BlobWriter
	trades TradeArchiveStore
	logger *slog.Logger
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter, trades TradeArchiveStore, logger *slog.Logger) *ArchiveImpl {
	return &ArchiveImpl{
		writer: writer,
		trades: trades,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

// ArchiveTrades moves all trades older than before into cold storage at
// archive/trades/<cutoff>.jsonl and deletes them from the hot store. Returns
// the number of archived rows. Rows are only deleted after the upload
// succeeded; a failed upload leaves the store untouched.
func (a *ArchiveImpl) ArchiveTrades(ctx context.Context, before time.Time) (int64, error) {
	trades, err := a.trades.ListTradesBefore(ctx, before, 0)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades query: %w", err)
	}
	if len(trades) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(trades)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades marshal: %w", err)
	}

	path := archivePath("trades", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive trades upload: %w", err)
	}

	deleted, err := a.trades.DeleteTradesBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive trades delete: %w", err)
	}

	a.logger.Info("archived trades",
		slog.String("path", path),
		slog.Int("uploaded", len(trades)),
		slog.Int64("deleted", deleted),
	)
	return int64(len(trades)), nil
}

// marshalJSONL serializes a slice of records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// archivePath builds the object key for an archive file, keyed by the
// cutoff timestamp so repeated runs with the same cutoff are idempotent.
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.UTC().Format("2006-01-02T15-04-05"))
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
