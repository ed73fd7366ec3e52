package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load merges the TOML file at path over Defaults and applies BETLEDGER_*
// overrides. An empty path skips the file. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	// A missing .env is fine.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Store.Driver, "BETLEDGER_STORE_DRIVER")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "BETLEDGER_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL")
	setStr(&cfg.Postgres.Host, "BETLEDGER_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "BETLEDGER_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "BETLEDGER_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "BETLEDGER_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "BETLEDGER_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "BETLEDGER_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "BETLEDGER_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "BETLEDGER_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "BETLEDGER_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "BETLEDGER_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "BETLEDGER_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "BETLEDGER_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "BETLEDGER_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "BETLEDGER_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "BETLEDGER_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "BETLEDGER_REDIS_TLS_ENABLED")
	setStr(&cfg.Redis.KeyPrefix, "BETLEDGER_REDIS_KEY_PREFIX")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "BETLEDGER_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "BETLEDGER_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "BETLEDGER_S3_REGION")
	setStr(&cfg.S3.Bucket, "BETLEDGER_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "BETLEDGER_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "BETLEDGER_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "BETLEDGER_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "BETLEDGER_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "BETLEDGER_S3_PREFIX")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "BETLEDGER_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "BETLEDGER_SERVER_PORT")
	setInt(&cfg.Server.Port, "PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "BETLEDGER_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "BETLEDGER_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "BETLEDGER_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "BETLEDGER_SERVER_RATE_WINDOW")

	// ── Ledger ──
	setDuration(&cfg.Ledger.SettleLockTTL, "BETLEDGER_LEDGER_SETTLE_LOCK_TTL")
	setDuration(&cfg.Ledger.QuoteCacheTTL, "BETLEDGER_LEDGER_QUOTE_CACHE_TTL")
	setBool(&cfg.Ledger.EnforceBalance, "BETLEDGER_LEDGER_ENFORCE_BALANCE")
	setBool(&cfg.Ledger.EnforceMarkets, "BETLEDGER_LEDGER_ENFORCE_MARKETS")

	// ── Export ──
	setBool(&cfg.Export.Enabled, "BETLEDGER_EXPORT_ENABLED")
	setStr(&cfg.Export.Cron, "BETLEDGER_EXPORT_CRON")
	setStr(&cfg.Export.Prefix, "BETLEDGER_EXPORT_PREFIX")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "BETLEDGER_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "BETLEDGER_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "BETLEDGER_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "BETLEDGER_NOTIFY_EVENTS")

	setStr(&cfg.Mode, "BETLEDGER_MODE")
	setStr(&cfg.LogLevel, "BETLEDGER_LOG_LEVEL")
}

// Each helper leaves dst alone unless the variable is set and parses.

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
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var cleaned []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) > 0 {
		*dst = cleaned
	}
}
