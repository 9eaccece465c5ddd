package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SUIPOOL_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SUIPOOL_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Sui ──
	setStr(&cfg.Sui.RPCURL, "SUIPOOL_SUI_RPC_URL")
	setStr(&cfg.Sui.WSURL, "SUIPOOL_SUI_WS_URL")
	setStr(&cfg.Sui.PackageID, "SUIPOOL_SUI_PACKAGE_ID")
	setStr(&cfg.Sui.ProtocolFeeVault.ObjectID, "SUIPOOL_SUI_PROTOCOL_FEE_VAULT_ID")
	setStr(&cfg.Sui.Treasury.ObjectID, "SUIPOOL_SUI_TREASURY_ID")
	setStr(&cfg.Sui.InsuranceFund.ObjectID, "SUIPOOL_SUI_INSURANCE_FUND_ID")
	setStr(&cfg.Sui.LPModule, "SUIPOOL_SUI_LP_MODULE")
	setStr(&cfg.Sui.Events.Swap, "SUIPOOL_SUI_EVENTS_SWAP")
	setStr(&cfg.Sui.Events.Deposit, "SUIPOOL_SUI_EVENTS_DEPOSIT")
	setStr(&cfg.Sui.Events.Withdraw, "SUIPOOL_SUI_EVENTS_WITHDRAW")

	// ── Indexer ──
	setStr(&cfg.Indexer.BaseURL, "SUIPOOL_INDEXER_BASE_URL")
	setStr(&cfg.Indexer.APIKey, "SUIPOOL_INDEXER_API_KEY")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "SUIPOOL_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "SUIPOOL_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SUIPOOL_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SUIPOOL_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SUIPOOL_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SUIPOOL_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SUIPOOL_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SUIPOOL_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SUIPOOL_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SUIPOOL_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "SUIPOOL_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SUIPOOL_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SUIPOOL_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SUIPOOL_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SUIPOOL_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SUIPOOL_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "SUIPOOL_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SUIPOOL_S3_REGION")
	setStr(&cfg.S3.Bucket, "SUIPOOL_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SUIPOOL_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SUIPOOL_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SUIPOOL_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SUIPOOL_S3_FORCE_PATH_STYLE")

	// ── Feed ──
	setBool(&cfg.Feed.Enabled, "SUIPOOL_FEED_ENABLED")

	// ── Archive ──
	setInt(&cfg.Archive.RetentionDays, "SUIPOOL_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "SUIPOOL_ARCHIVE_INTERVAL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SUIPOOL_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SUIPOOL_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SUIPOOL_SERVER_CORS_ORIGINS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SUIPOOL_MODE")
	setStr(&cfg.LogLevel, "SUIPOOL_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
