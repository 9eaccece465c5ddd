package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lantern-fi/suipool/internal/analytics"
	s3blob "github.com/lantern-fi/suipool/internal/blob/s3"
	"github.com/lantern-fi/suipool/internal/cache/redis"
	"github.com/lantern-fi/suipool/internal/coinselect"
	"github.com/lantern-fi/suipool/internal/config"
	"github.com/lantern-fi/suipool/internal/domain"
	"github.com/lantern-fi/suipool/internal/events"
	"github.com/lantern-fi/suipool/internal/platform/indexer"
	"github.com/lantern-fi/suipool/internal/platform/sui"
	"github.com/lantern-fi/suipool/internal/pricing"
	"github.com/lantern-fi/suipool/internal/store/postgres"
	"github.com/lantern-fi/suipool/internal/txbuilder"
)

// Dependencies bundles every domain-level dependency that the application
// modes need to operate. It is constructed by Wire and torn down by the
// returned cleanup function.
type Dependencies struct {
	// Platform clients
	Sui     *sui.Client
	Indexer *indexer.Client

	// Infrastructure clients, exposed for health checks
	Postgres *postgres.Client
	Redis    *redis.Client

	// Stores
	EventStore domain.EventStore
	OrderStore domain.OrderStore

	// Caches
	PriceCache    domain.PriceCache
	MetadataCache domain.MetadataCache
	RateLimiter   domain.RateLimiter

	// Blob storage
	BlobWriter domain.BlobWriter
	Archiver   domain.Archiver

	// Protocol assembly
	Builder    *txbuilder.Builder
	Selector   *coinselect.Selector
	Classifier *events.Classifier
	Analytics  *analytics.Engine
}

// needsS3 returns true for modes that require object storage.
func needsS3(mode string) bool {
	switch mode {
	case "archive", "full":
		return true
	default:
		return false
	}
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	deps.Postgres = pgClient
	eventStore := postgres.NewEventStore(pgClient.Pool())
	deps.EventStore = eventStore
	deps.OrderStore = postgres.NewOrderStore(pgClient.Pool())

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.Redis = redisClient
	deps.PriceCache = redis.NewPriceCache(redisClient)
	deps.MetadataCache = redis.NewMetadataCache(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)

	// --- S3 blob storage (only for modes that archive) ---
	if needsS3(cfg.Mode) {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}

		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.Archiver = s3blob.NewArchiver(deps.BlobWriter, eventStore, logger)
	}

	// --- Platform clients ---
	deps.Sui = sui.NewClient(cfg.Sui.RPCURL)
	deps.Indexer = indexer.NewClient(cfg.Indexer.BaseURL, cfg.Indexer.APIKey)

	// --- Protocol assembly ---
	builder, err := txbuilder.NewBuilder(txbuilder.Addresses{
		PackageID:        cfg.Sui.PackageID,
		ProtocolFeeVault: objectRef(cfg.Sui.ProtocolFeeVault),
		Treasury:         objectRef(cfg.Sui.Treasury),
		InsuranceFund:    objectRef(cfg.Sui.InsuranceFund),
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: builder: %w", err)
	}
	deps.Builder = builder
	deps.Selector = coinselect.NewSelector(deps.Sui, logger)
	deps.Classifier = events.NewClassifier(eventTags(cfg), logger)
	deps.Analytics = analytics.NewEngine(pricing.NewClassifier(cfg.Sui.LPModule), logger)

	return deps, cleanup, nil
}

func objectRef(c config.ObjectRefConfig) domain.ObjectRef {
	return domain.ObjectRef{
		ObjectID: c.ObjectID,
		Version:  c.Version,
		Digest:   c.Digest,
	}
}

func eventTags(cfg *config.Config) events.Tags {
	return events.Tags{
		Swap:     cfg.Sui.Events.Swap,
		Deposit:  cfg.Sui.Events.Deposit,
		Withdraw: cfg.Sui.Events.Withdraw,
	}
}
