// Package feed runs the websocket event ingest loop: subscribed protocol
// events are classified and batch-inserted into the event store.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/events"
	"github.com/lantern-fi/suipool/internal/platform/sui"
)

const (
	// flushInterval bounds how long a buffered event waits before insert.
	flushInterval = 2 * time.Second

	// flushBatchSize triggers an early flush when the buffer fills up.
	flushBatchSize = 200

	// shutdownFlushTimeout bounds the final flush on shutdown so a wedged
	// store cannot hang process exit.
	shutdownFlushTimeout = 5 * time.Second

	// Reconnect backoff: doubles from base up to max on consecutive
	// failures, resets once a connection holds for longer than max.
	reconnectBaseDelay = 2 * time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// EventFeed subscribes to the protocol's event types over the fullnode
// websocket, classifies the stream, and persists trade events. It reconnects
// on disconnect; store inserts are idempotent, so replays after a reconnect
// are harmless.
type EventFeed struct {
	wsURL      string
	tags       events.Tags
	classifier *events.Classifier
	store      domain.EventStore
	logger     *slog.Logger

	// Backoff bounds, fields so tests can shrink them.
	baseDelay time.Duration
	maxDelay  time.Duration

	incoming chan domain.RawEvent
}

// NewEventFeed creates a feed for the given websocket endpoint and event tags.
func NewEventFeed(
	wsURL string,
	tags events.Tags,
	classifier *events.Classifier,
	store domain.EventStore,
	logger *slog.Logger,
) *EventFeed {
	return &EventFeed{
		wsURL:      wsURL,
		tags:       tags,
		classifier: classifier,
		store:      store,
		logger:     logger.With(slog.String("component", "event_feed")),
		baseDelay:  reconnectBaseDelay,
		maxDelay:   reconnectMaxDelay,
		incoming:   make(chan domain.RawEvent, flushBatchSize),
	}
}

// Run connects, subscribes, and ingests until ctx is cancelled. Reconnects
// with exponential backoff on disconnect.
func (f *EventFeed) Run(ctx context.Context) error {
	go f.ingestLoop(ctx)

	delay := f.baseDelay
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		started := time.Now()
		err := f.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Since(started) > f.maxDelay {
			// The session held for a while; start the backoff over.
			delay = f.baseDelay
		}
		f.logger.Warn("event feed disconnected, reconnecting",
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > f.maxDelay {
			delay = f.maxDelay
		}
	}
}

// runConnection holds one websocket session open until it drops or ctx ends.
func (f *EventFeed) runConnection(ctx context.Context) error {
	client := sui.NewWSClient(f.wsURL)
	defer client.Close()

	client.OnEvent(func(ev domain.RawEvent) {
		select {
		case f.incoming <- ev:
		case <-ctx.Done():
		}
	})

	connCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	err := client.Connect(connCtx)
	cancel()
	if err != nil {
		return err
	}

	tags := f.subscribedTags()
	if err := client.SubscribeEvents(ctx, tags); err != nil {
		return err
	}
	f.logger.Info("event feed subscribed", slog.Int("event_types", len(tags)))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-client.Disconnected():
		return fmt.Errorf("feed: %w", domain.ErrWSDisconnect)
	}
}

// ingestLoop buffers raw events and flushes them as classified batches.
func (f *EventFeed) ingestLoop(ctx context.Context) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var buffer []domain.RawEvent
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
			f.flush(flushCtx, buffer)
			cancel()
			return
		case ev := <-f.incoming:
			buffer = append(buffer, ev)
			if len(buffer) >= flushBatchSize {
				f.flush(ctx, buffer)
				buffer = nil
			}
		case <-ticker.C:
			f.flush(ctx, buffer)
			buffer = nil
		}
	}
}

// flush classifies a buffered batch and inserts its trade events. Insert
// failures are logged and the batch is dropped; the store's idempotency key
// makes a later backfill via event queries safe.
func (f *EventFeed) flush(ctx context.Context, buffer []domain.RawEvent) {
	if len(buffer) == 0 {
		return
	}

	classified := f.classifier.Classify(buffer)
	if len(classified.Trades) == 0 {
		return
	}

	if err := f.store.InsertTrades(ctx, classified.Trades); err != nil {
		f.logger.Error("trade insert failed, dropping batch",
			slog.Int("trades", len(classified.Trades)),
			slog.String("error", err.Error()),
		)
		return
	}
	f.logger.Debug("ingested trade events", slog.Int("trades", len(classified.Trades)))
}

func (f *EventFeed) subscribedTags() []string {
	var tags []string
	for _, tag := range []string{f.tags.Swap, f.tags.Deposit, f.tags.Withdraw} {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
