package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lantern-fi/suipool/internal/domain"
)

const testTOML = `
mode = "serve"
log_level = "debug"

[sui]
rpc_url = "https://fullnode.testnet.sui.io:443"
ws_url = "wss://fullnode.testnet.sui.io:443"
package_id = "0xabc"
lp_module = "amm_lp"

[sui.protocol_fee_vault]
object_id = "0xfee"
version = 10
digest = "9WzSXdbEiTXnTnFffRJDj88PMzsDySoZvYhjy712Ck1b"

[sui.treasury]
object_id = "0x7rea"
version = 11

[sui.insurance_fund]
object_id = "0x1n5"
version = 12

[sui.events]
swap = "0xabc::events::SwapEvent"
deposit = "0xabc::events::DepositEvent"
withdraw = "0xabc::events::WithdrawEvent"

[indexer]
base_url = "https://indexer.example.com"
api_key = "secret"

[postgres]
host = "db.internal"
database = "suipool"
user = "app"
password = "pw"

[archive]
retention_days = 30
interval = "6h"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, testTOML))
	require.NoError(t, err)

	require.Equal(t, "serve", cfg.Mode)
	require.Equal(t, "0xabc", cfg.Sui.PackageID)
	require.Equal(t, uint64(10), cfg.Sui.ProtocolFeeVault.Version)
	require.Equal(t, "0xabc::events::SwapEvent", cfg.Sui.Events.Swap)
	require.Equal(t, 30, cfg.Archive.RetentionDays)
	require.Equal(t, 6*time.Hour, cfg.Archive.Interval.Duration)

	// Untouched sections keep their defaults.
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
	require.Equal(t, 5432, cfg.Postgres.Port)
	require.Equal(t, 8000, cfg.Server.Port)

	require.NoError(t, cfg.Validate())
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SUIPOOL_INDEXER_API_KEY", "env-secret")
	t.Setenv("SUIPOOL_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("SUIPOOL_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(writeConfig(t, testTOML))
	require.NoError(t, err)

	require.Equal(t, "env-secret", cfg.Indexer.APIKey)
	require.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestValidateReportsMissingAddresses(t *testing.T) {
	cfg := Defaults()
	cfg.Indexer.BaseURL = "https://indexer.example.com"

	err := cfg.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrConfiguration))
	require.Contains(t, err.Error(), "package_id")
	require.Contains(t, err.Error(), "protocol_fee_vault")
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg, err := Load(writeConfig(t, testTOML))
	require.NoError(t, err)

	cfg.Mode = "turbo"
	err = cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown mode")
}
