package s3blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
)

type fakeWriter struct {
	puts map[string][]byte
	err  error
}

func (f *fakeWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if f.err != nil {
		return f.err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(data); err != nil {
		return err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[path] = buf.Bytes()
	return nil
}

type fakeTradeStore struct {
	trades  []domain.PoolTradeEvent
	deleted bool
}

func (f *fakeTradeStore) ListTradesBefore(_ context.Context, cutoff time.Time, _ int) ([]domain.PoolTradeEvent, error) {
	var out []domain.PoolTradeEvent
	for _, t := range f.trades {
		if t.TimestampMs < cutoff.UnixMilli() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTradeStore) DeleteTradesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.deleted = true
	var kept []domain.PoolTradeEvent
	var n int64
	for _, t := range f.trades {
		if t.TimestampMs < cutoff.UnixMilli() {
			n++
			continue
		}
		kept = append(kept, t)
	}
	f.trades = kept
	return n, nil
}

func trade(digest string, ts time.Time) domain.PoolTradeEvent {
	return domain.PoolTradeEvent{
		ID:          domain.EventID{TxDigest: digest, EventSeq: 0},
		PoolID:      "0xp00l",
		TypeIn:      "0x2::sui::SUI",
		AmountIn:    sdkmath.NewInt(100),
		TypeOut:     "0xabc::usdc::USDC",
		AmountOut:   sdkmath.NewInt(200),
		TimestampMs: ts.UnixMilli(),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArchiveTradesUploadsThenDeletes(t *testing.T) {
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeTradeStore{trades: []domain.PoolTradeEvent{
		trade("old1", cutoff.Add(-48*time.Hour)),
		trade("old2", cutoff.Add(-time.Hour)),
		trade("new1", cutoff.Add(time.Hour)),
	}}
	writer := &fakeWriter{}

	a := NewArchiver(writer, store, testLogger())
	n, err := a.ArchiveTrades(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.Len(t, writer.puts, 1)
	for path, data := range writer.puts {
		assert.Contains(t, path, "archive/trades/")
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, 2)
	}

	// The row newer than the cutoff survives.
	require.Len(t, store.trades, 1)
	assert.Equal(t, "new1", store.trades[0].ID.TxDigest)
}

func TestArchiveTradesEmptyIsNoop(t *testing.T) {
	writer := &fakeWriter{}
	store := &fakeTradeStore{}

	a := NewArchiver(writer, store, testLogger())
	n, err := a.ArchiveTrades(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, writer.puts)
}

func TestArchiveTradesUploadFailureKeepsRows(t *testing.T) {
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeTradeStore{trades: []domain.PoolTradeEvent{
		trade("old1", cutoff.Add(-time.Hour)),
	}}
	writer := &fakeWriter{err: errors.New("bucket gone")}

	a := NewArchiver(writer, store, testLogger())
	_, err := a.ArchiveTrades(context.Background(), cutoff)
	require.Error(t, err)
	assert.False(t, store.deleted)
	assert.Len(t, store.trades, 1)
}
