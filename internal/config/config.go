// Package config defines the service configuration and its validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config is the root configuration. Fields come from a TOML file and are then
// overridden by BETLEDGER_* environment variables.
type Config struct {
	Store    StoreConfig    `toml:"store"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Server   ServerConfig   `toml:"server"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Export   ExportConfig   `toml:"export"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// StoreConfig selects the ledger backend: "memory" or "postgres".
type StoreConfig struct {
	Driver string `toml:"driver"`
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

// RedisConfig holds Redis connection parameters. When disabled, locks, the
// event bus and rate limiting run in-process.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
	KeyPrefix  string `toml:"key_prefix"`
}

// S3Config holds S3-compatible object storage parameters for ledger exports.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// duration lets TOML carry strings like "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled      bool     `toml:"enabled"`
	Port         int      `toml:"port"`
	CORSOrigins  []string `toml:"cors_origins"`
	APIKey       string   `toml:"api_key"`
	RateLimit    int      `toml:"rate_limit"`
	RateWindow   duration `toml:"rate_window"`
	ReadTimeout  duration `toml:"read_timeout"`
	WriteTimeout duration `toml:"write_timeout"`
}

// LedgerConfig tunes placement and settlement.
type LedgerConfig struct {
	SettleLockTTL   duration `toml:"settle_lock_ttl"`
	QuoteCacheTTL   duration `toml:"quote_cache_ttl"`
	EnforceBalance  bool     `toml:"enforce_balance"`
	EnforceMarkets  bool     `toml:"enforce_markets"`
	DefaultPageSize int      `toml:"default_page_size"`
	MaxPageSize     int      `toml:"max_page_size"`
}

// ExportConfig schedules CSV snapshots of the ledger to object storage.
type ExportConfig struct {
	Enabled            bool   `toml:"enabled"`
	Cron               string `toml:"cron"`
	Prefix             string `toml:"prefix"`
	MultipartThreshold int64  `toml:"multipart_threshold"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config that runs a self-contained in-memory ledger.
func Defaults() Config {
	return Config{
		Store: StoreConfig{Driver: "memory"},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "betledger",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			PoolSize:   20,
			MaxRetries: 3,
			KeyPrefix:  "betledger",
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "betledger",
			ForcePathStyle: true,
		},
		Server: ServerConfig{
			Enabled:      true,
			Port:         8080,
			CORSOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:    120,
			RateWindow:   duration{time.Minute},
			ReadTimeout:  duration{15 * time.Second},
			WriteTimeout: duration{30 * time.Second},
		},
		Ledger: LedgerConfig{
			SettleLockTTL:   duration{10 * time.Second},
			QuoteCacheTTL:   duration{time.Minute},
			EnforceBalance:  true,
			EnforceMarkets:  true,
			DefaultPageSize: 50,
			MaxPageSize:     500,
		},
		Export: ExportConfig{
			Cron:               "0 4 * * *",
			Prefix:             "exports/wagers",
			MultipartThreshold: 8 * 1024 * 1024,
		},
		Notify: NotifyConfig{
			Events: []string{"wager.settled", "wager.cancelled", "export.completed"},
		},
		Mode:     "server",
		LogLevel: "info",
	}
}

var validModes = map[string]bool{
	"server": true,
	"export": true,
	"full":   true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate reports every problem in one error.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: server, export, full)", c.Mode))
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	switch c.Store.Driver {
	case "memory":
	case "postgres":
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
		if c.Postgres.PoolMinConns < 0 || c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must be between 0 and pool_max_conns")
		}
	default:
		errs = append(errs, fmt.Sprintf("store: unknown driver %q (valid: memory, postgres)", c.Store.Driver))
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty")
		}
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty")
		}
	}

	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
		if c.Server.RateLimit > 0 && c.Server.RateWindow.Duration <= 0 {
			errs = append(errs, "server: rate_window must be > 0 when rate_limit is set")
		}
	}

	if c.Ledger.SettleLockTTL.Duration <= 0 {
		errs = append(errs, "ledger: settle_lock_ttl must be > 0")
	}
	if c.Ledger.DefaultPageSize < 1 || c.Ledger.MaxPageSize < c.Ledger.DefaultPageSize {
		errs = append(errs, "ledger: need 1 <= default_page_size <= max_page_size")
	}

	if c.Export.Enabled || c.Mode == "export" {
		if !c.S3.Enabled {
			errs = append(errs, "export: s3.enabled is required for scheduled exports")
		}
		if _, err := cron.ParseStandard(c.Export.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("export: invalid cron %q: %v", c.Export.Cron, err))
		}
	}

	if (c.Notify.TelegramToken == "") != (c.Notify.TelegramChatID == "") {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
