package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/alanyoungcy/betledger/internal/blob/s3"
	"github.com/alanyoungcy/betledger/internal/cache/local"
	"github.com/alanyoungcy/betledger/internal/cache/redis"
	"github.com/alanyoungcy/betledger/internal/config"
	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/market"
	"github.com/alanyoungcy/betledger/internal/notify"
	"github.com/alanyoungcy/betledger/internal/server/handler"
	"github.com/alanyoungcy/betledger/internal/store/memory"
	"github.com/alanyoungcy/betledger/internal/store/postgres"
)

// Dependencies bundles every backend the modes need. It is constructed by
// Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Stores
	Accounts domain.AccountStore
	Wagers   domain.WagerStore
	Audit    domain.AuditStore

	// Coordination and caches
	Locks   domain.LockManager
	Bus     domain.SignalBus
	Limiter domain.RateLimiter
	Quotes  domain.QuoteCache

	// Blob storage; nil when S3 is disabled.
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader

	Catalog  *market.Catalog
	Notifier *notify.Notifier

	// Health probes keyed by dependency name.
	Checks map[string]handler.HealthCheck
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*Dependencies, func(), error) {
		cleanup()
		return nil, nil, err
	}

	deps := &Dependencies{Checks: map[string]handler.HealthCheck{}}

	catalog, err := market.Default()
	if err != nil {
		return fail(fmt.Errorf("wire: market catalog: %w", err))
	}
	deps.Catalog = catalog

	// --- Ledger store ---
	switch cfg.Store.Driver {
	case "postgres":
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
			return fail(fmt.Errorf("wire: postgres: %w", err))
		}
		closers = append(closers, pgClient.Close)

		if cfg.Postgres.RunMigrations {
			if err := pgClient.RunMigrations(ctx); err != nil {
				return fail(fmt.Errorf("wire: postgres migrations: %w", err))
			}
		}

		pool := pgClient.Pool()
		deps.Accounts = postgres.NewAccountStore(pool)
		deps.Wagers = postgres.NewWagerStore(pool)
		deps.Audit = postgres.NewAuditStore(pool)
		deps.Checks["postgres"] = pgClient.Ping
	default:
		logger.WarnContext(ctx, "using in-memory ledger; data is lost on restart")
		store := memory.New()
		deps.Accounts = store.Accounts()
		deps.Wagers = store.Wagers()
		deps.Audit = store.Audit()
	}

	// --- Redis, or in-process equivalents ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
			KeyPrefix:  cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: redis: %w", err))
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		deps.Locks = redis.NewLockManager(redisClient)
		deps.Bus = redis.NewSignalBus(redisClient)
		deps.Limiter = redis.NewRateLimiter(redisClient)
		deps.Quotes = redis.NewQuoteCache(redisClient, cfg.Ledger.QuoteCacheTTL.Duration)
		deps.Checks["redis"] = redisClient.Ping
	} else {
		deps.Locks = local.NewLockManager()
		deps.Bus = local.NewSignalBus()
		deps.Limiter = local.NewRateLimiter()
		deps.Quotes = local.NewQuoteCache(cfg.Ledger.QuoteCacheTTL.Duration)
	}

	// --- S3 blob storage ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
			Prefix:         cfg.S3.Prefix,
		})
		if err != nil {
			return fail(fmt.Errorf("wire: s3: %w", err))
		}
		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.BlobReader = s3blob.NewReader(s3Client)
		deps.Checks["s3"] = s3Client.Health
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		tg, err := notify.NewTelegramSender(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			logger.WarnContext(ctx, "telegram notifications disabled", slog.String("error", err.Error()))
		} else {
			senders = append(senders, tg)
		}
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		dc, err := notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL)
		if err != nil {
			logger.WarnContext(ctx, "discord notifications disabled", slog.String("error", err.Error()))
		} else {
			senders = append(senders, dc)
		}
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
