package feed

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/events"
)

const swapTag = "0xamm::events::SwapEvent"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingStore struct {
	mu          sync.Mutex
	trades      []domain.PoolTradeEvent
	sawDeadline bool
}

func (s *recordingStore) InsertTrades(ctx context.Context, evs []domain.PoolTradeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, s.sawDeadline = ctx.Deadline()
	s.trades = append(s.trades, evs...)
	return nil
}

func (s *recordingStore) ListTradesByPool(context.Context, string, domain.ListOpts) ([]domain.PoolTradeEvent, error) {
	return nil, nil
}

func (s *recordingStore) ListTradesBefore(context.Context, time.Time, int) ([]domain.PoolTradeEvent, error) {
	return nil, nil
}

func (s *recordingStore) DeleteTradesBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (s *recordingStore) LastTimestamp(context.Context) (time.Time, error) {
	return time.Time{}, nil
}

func newTestFeed(wsURL string, store domain.EventStore) *EventFeed {
	tags := events.Tags{Swap: swapTag}
	f := NewEventFeed(wsURL, tags, events.NewClassifier(tags, discard()), store, discard())
	f.baseDelay = 20 * time.Millisecond
	f.maxDelay = 80 * time.Millisecond
	return f
}

// A peer that accepts the subscription and then drops the connection must be
// redialed, not waited on forever.
func TestRunRedialsAfterConnectionDrop(t *testing.T) {
	var dials atomic.Int64
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		dials.Add(1)
		// Accept the subscribe frame, then hang up.
		_, _, _ = conn.ReadMessage()
		conn.Close()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	f := newTestFeed(wsURL, &recordingStore{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool { return dials.Load() >= 3 }, 5*time.Second, 20*time.Millisecond,
		"feed stopped dialing after the connection dropped")

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after cancellation")
	}
}

func TestShutdownFlushHasDeadline(t *testing.T) {
	store := &recordingStore{}
	f := newTestFeed("ws://unused", store)

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		f.ingestLoop(ctx)
		close(loopDone)
	}()

	payload, err := json.Marshal(map[string]string{
		"pool_id":    "0xp00l",
		"type_in":    "0x2::sui::SUI",
		"amount_in":  "1000000000",
		"type_out":   "0xabc::usdc::USDC",
		"amount_out": "2000000",
	})
	require.NoError(t, err)
	f.incoming <- domain.RawEvent{
		ID:          domain.EventID{TxDigest: "D1GEST", EventSeq: 0},
		Type:        swapTag,
		TimestampMs: 1_700_000_000_000,
		ParsedJSON:  payload,
	}
	// Give the loop a moment to buffer the event before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-loopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("ingest loop did not stop")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.trades, 1)
	require.True(t, store.sawDeadline, "final flush ran without a deadline")
}
