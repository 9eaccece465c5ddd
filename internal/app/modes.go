package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lantern-fi/suipool/internal/feed"
	"github.com/lantern-fi/suipool/internal/server"
	"github.com/lantern-fi/suipool/internal/server/handler"
	"github.com/lantern-fi/suipool/internal/service"
)

// shutdownTimeout bounds how long in-flight HTTP requests may run after the
// stop signal.
const shutdownTimeout = 10 * time.Second

// ServeMode runs the HTTP API only.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps)
	return g.Wait()
}

// IngestMode runs the websocket event feed only.
func (a *App) IngestMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting ingest mode")

	g, ctx := errgroup.WithContext(ctx)
	if err := a.startEventFeed(ctx, g, deps); err != nil {
		return fmt.Errorf("ingest mode: %w", err)
	}
	return g.Wait()
}

// ArchiveMode moves aged trade events to cold storage. With a positive
// archive interval it runs periodically; otherwise it runs once and exits.
func (a *App) ArchiveMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting archive mode")

	if deps.Archiver == nil {
		return fmt.Errorf("archive mode: blob storage is not wired")
	}

	interval := a.cfg.Archive.Interval.Duration
	if interval <= 0 {
		return a.runArchive(ctx, deps)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.archiveLoop(ctx, deps, interval)
	})
	return g.Wait()
}

// FullMode starts all subsystems: the HTTP API, the event feed, and the
// periodic archiver.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps)
	}

	if a.cfg.Feed.Enabled {
		if err := a.startEventFeed(ctx, g, deps); err != nil {
			return fmt.Errorf("full mode: %w", err)
		}
	}

	if deps.Archiver != nil {
		interval := a.cfg.Archive.Interval.Duration
		if interval > 0 {
			g.Go(func() error {
				return a.archiveLoop(ctx, deps, interval)
			})
		}
	}

	return g.Wait()
}

// startHTTPServer builds the services and handlers, registers routes, and
// runs the server on the errgroup with graceful shutdown on ctx cancel.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies) {
	poolSvc := service.NewPoolService(
		deps.Sui, deps.PriceCache, deps.MetadataCache,
		deps.EventStore, deps.Analytics, a.logger,
	)
	tradeSvc := service.NewTradeService(
		deps.Sui, deps.Indexer, deps.Selector, deps.Builder, a.logger,
	)
	orderSvc := service.NewOrderService(
		deps.Indexer, deps.OrderStore, deps.RateLimiter, a.logger,
	)

	srv := server.NewServer(
		server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		},
		server.Handlers{
			Health: handler.NewHealthHandler(map[string]handler.Pinger{
				"postgres": deps.Postgres,
				"redis":    deps.Redis,
			}, a.logger),
			Pools:   handler.NewPoolHandler(poolSvc, a.logger),
			Bundles: handler.NewBundleHandler(tradeSvc, a.logger),
			Orders:  handler.NewOrderHandler(orderSvc, tradeSvc, a.logger),
		},
		a.logger,
	)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// startEventFeed runs the websocket ingest feed on the errgroup.
func (a *App) startEventFeed(ctx context.Context, g *errgroup.Group, deps *Dependencies) error {
	if a.cfg.Sui.WSURL == "" {
		return fmt.Errorf("event feed requires sui.ws_url")
	}

	eventFeed := feed.NewEventFeed(
		a.cfg.Sui.WSURL,
		eventTags(a.cfg),
		deps.Classifier,
		deps.EventStore,
		a.logger,
	)
	g.Go(func() error {
		err := eventFeed.Run(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("event feed: %w", err)
	})
	return nil
}

// archiveLoop runs one archive pass immediately and then on every tick.
func (a *App) archiveLoop(ctx context.Context, deps *Dependencies, interval time.Duration) error {
	if err := a.runArchive(ctx, deps); err != nil {
		a.logger.ErrorContext(ctx, "archive pass failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.runArchive(ctx, deps); err != nil {
				a.logger.ErrorContext(ctx, "archive pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runArchive archives trades older than the configured retention cutoff.
func (a *App) runArchive(ctx context.Context, deps *Dependencies) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -a.cfg.Archive.RetentionDays)

	archived, err := deps.Archiver.ArchiveTrades(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("archive trades before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	a.logger.InfoContext(ctx, "archive pass complete",
		slog.Time("cutoff", cutoff),
		slog.Int64("archived", archived),
	)
	return nil
}
