package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "trade"
	cfg.Store.Driver = "sqlite"
	cfg.Server.Port = 0
	cfg.Export.Enabled = true

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `unknown mode "trade"`)
	assert.Contains(t, msg, `unknown driver "sqlite"`)
	assert.Contains(t, msg, "server: port")
	assert.Contains(t, msg, "s3.enabled is required")
}

func TestValidateBadCron(t *testing.T) {
	cfg := Defaults()
	cfg.S3.Enabled = true
	cfg.Export.Enabled = true
	cfg.Export.Cron = "every day"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron")
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "full"

[store]
driver = "postgres"

[postgres]
host = "db"

[ledger]
settle_lock_ttl = "3s"
`), 0o600))

	t.Setenv("BETLEDGER_SERVER_PORT", "9090")
	t.Setenv("PORT", "")
	t.Setenv("BETLEDGER_NOTIFY_EVENTS", "wager.settled, ,export.completed")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "full", cfg.Mode)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, 3*time.Second, cfg.Ledger.SettleLockTTL.Duration)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"wager.settled", "export.completed"}, cfg.Notify.Events)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Postgres.Password = "hunter2"
	cfg.Server.APIKey = "k"

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Postgres.Password)
	assert.Equal(t, "***", out.Server.APIKey)
	assert.Equal(t, "", out.Redis.Password)
	assert.Equal(t, "hunter2", cfg.Postgres.Password)

	out.Server.CORSOrigins[0] = "mutated"
	assert.NotEqual(t, "mutated", cfg.Server.CORSOrigins[0])
}
