// Package config defines the top-level configuration for the suipool
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/lantern-fi/suipool/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by SUIPOOL_* environment
// variables.
type Config struct {
	Sui      SuiConfig      `toml:"sui"`
	Indexer  IndexerConfig  `toml:"indexer"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Feed     FeedConfig     `toml:"feed"`
	Archive  ArchiveConfig  `toml:"archive"`
	Server   ServerConfig   `toml:"server"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// ObjectRefConfig pins a shared protocol object at a version, as required
// for transaction inputs.
type ObjectRefConfig struct {
	ObjectID string `toml:"object_id"`
	Version  uint64 `toml:"version"`
	Digest   string `toml:"digest"`
}

// SuiConfig holds fullnode endpoints and the protocol deployment addresses.
type SuiConfig struct {
	RPCURL    string `toml:"rpc_url"`
	WSURL     string `toml:"ws_url"`
	PackageID string `toml:"package_id"`

	ProtocolFeeVault ObjectRefConfig `toml:"protocol_fee_vault"`
	Treasury         ObjectRefConfig `toml:"treasury"`
	InsuranceFund    ObjectRefConfig `toml:"insurance_fund"`

	// LPModule is the module name all LP share coin types are minted from.
	LPModule string `toml:"lp_module"`

	Events EventTagsConfig `toml:"events"`
}

// EventTagsConfig names the protocol's event types as fully-qualified tags.
// Empty tags disable ingestion of that event kind.
type EventTagsConfig struct {
	Swap     string `toml:"swap"`
	Deposit  string `toml:"deposit"`
	Withdraw string `toml:"withdraw"`
}

// IndexerConfig holds the order indexer API endpoint and credentials.
type IndexerConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// FeedConfig holds event ingestion parameters.
type FeedConfig struct {
	Enabled bool `toml:"enabled"`
}

// ArchiveConfig holds trade archival parameters. Interval zero means the
// archive mode runs once and exits.
type ArchiveConfig struct {
	RetentionDays int      `toml:"retention_days"`
	Interval      duration `toml:"interval"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "6h", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "6h" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Sui: SuiConfig{
			RPCURL:   "https://fullnode.mainnet.sui.io:443",
			WSURL:    "wss://fullnode.mainnet.sui.io:443",
			LPModule: "amm_lp",
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "suipool",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "suipool-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Feed: FeedConfig{
			Enabled: true,
		},
		Archive: ArchiveConfig{
			RetentionDays: 90,
			Interval:      duration{24 * time.Hour},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":   true,
	"ingest":  true,
	"archive": true,
	"full":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and
// returns a combined ErrConfiguration describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, ingest, archive, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Fullnode endpoints and deployment addresses.
	if c.Sui.RPCURL == "" {
		errs = append(errs, "sui: rpc_url must not be empty")
	}
	if (mode == "ingest" || mode == "full") && c.Feed.Enabled && c.Sui.WSURL == "" {
		errs = append(errs, "sui: ws_url is required when the event feed is enabled")
	}
	if c.Sui.PackageID == "" {
		errs = append(errs, "sui: package_id must not be empty")
	}
	if c.Sui.ProtocolFeeVault.ObjectID == "" {
		errs = append(errs, "sui: protocol_fee_vault.object_id must not be empty")
	}
	if c.Sui.Treasury.ObjectID == "" {
		errs = append(errs, "sui: treasury.object_id must not be empty")
	}
	if c.Sui.InsuranceFund.ObjectID == "" {
		errs = append(errs, "sui: insurance_fund.object_id must not be empty")
	}
	if c.Sui.LPModule == "" {
		errs = append(errs, "sui: lp_module must not be empty")
	}

	// Indexer.
	if c.Indexer.BaseURL == "" {
		errs = append(errs, "indexer: base_url must not be empty")
	}

	// Postgres.
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis.
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 is checked only for modes that touch object storage.
	if mode == "archive" || mode == "full" {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
	}

	// Archive.
	if c.Archive.RetentionDays < 1 {
		errs = append(errs, "archive: retention_days must be >= 1")
	}

	// Server.
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s: %w",
			strings.Join(errs, "\n  - "), domain.ErrConfiguration)
	}
	return nil
}
