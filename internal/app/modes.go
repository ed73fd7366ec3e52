package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/betledger/internal/server"
	"github.com/alanyoungcy/betledger/internal/server/handler"
	"github.com/alanyoungcy/betledger/internal/server/ws"
	"github.com/alanyoungcy/betledger/internal/service"
	"github.com/alanyoungcy/betledger/internal/settlement"
)

const shutdownTimeout = 10 * time.Second

// services are the use-case layer shared by every mode.
type services struct {
	wagers   *service.WagerService
	accounts *service.AccountService
	exports  *service.ExportService
}

func (a *App) buildServices(deps *Dependencies) services {
	ledger := a.cfg.Ledger
	return services{
		wagers: service.NewWagerService(
			deps.Wagers, deps.Accounts, deps.Catalog, settlement.NewReconciler(),
			deps.Locks, deps.Quotes, deps.Bus, deps.Audit, deps.Notifier,
			service.WagerOptions{
				LockTTL:        ledger.SettleLockTTL.Duration,
				EnforceBalance: ledger.EnforceBalance,
				EnforceMarkets: ledger.EnforceMarkets,
			},
			a.logger,
		),
		accounts: service.NewAccountService(deps.Accounts, deps.Wagers, deps.Bus, deps.Audit, a.logger),
		exports: service.NewExportService(
			deps.Wagers, deps.BlobWriter, deps.BlobReader, deps.Audit, deps.Notifier,
			service.ExportOptions{
				Prefix:             a.cfg.Export.Prefix,
				MultipartThreshold: a.cfg.Export.MultipartThreshold,
			},
			a.logger,
		),
	}
}

// ServerMode serves the HTTP API and websocket stream.
func (a *App) ServerMode(ctx context.Context, deps *Dependencies, svc services) error {
	a.logger.InfoContext(ctx, "starting server mode")
	g, ctx := errgroup.WithContext(ctx)
	a.startHTTPServer(ctx, g, deps, svc)
	return g.Wait()
}

// ExportMode runs only the scheduled ledger export.
func (a *App) ExportMode(ctx context.Context, svc services) error {
	a.logger.InfoContext(ctx, "starting export mode")
	g, ctx := errgroup.WithContext(ctx)
	if err := a.startExportJob(ctx, g, svc.exports); err != nil {
		return err
	}
	return g.Wait()
}

// FullMode serves the API and runs the export schedule when enabled.
func (a *App) FullMode(ctx context.Context, deps *Dependencies, svc services) error {
	a.logger.InfoContext(ctx, "starting full mode")
	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Server.Enabled {
		a.startHTTPServer(ctx, g, deps, svc)
	}
	if a.cfg.Export.Enabled {
		if err := a.startExportJob(ctx, g, svc.exports); err != nil {
			return err
		}
	}
	return g.Wait()
}

// startHTTPServer adds the API server and websocket hub to g. The server is
// shut down gracefully when ctx is cancelled.
func (a *App) startHTTPServer(ctx context.Context, g *errgroup.Group, deps *Dependencies, svc services) {
	sc := a.cfg.Server
	paging := handler.Paging{Default: a.cfg.Ledger.DefaultPageSize, Max: a.cfg.Ledger.MaxPageSize}

	hub := ws.NewHub(deps.Bus, a.logger, ws.Config{
		Mode:           a.cfg.Mode,
		StartedAt:      time.Now().UTC(),
		AllowedOrigins: sc.CORSOrigins,
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(server.Config{
		Port:         sc.Port,
		CORSOrigins:  sc.CORSOrigins,
		APIKey:       sc.APIKey,
		RateLimit:    sc.RateLimit,
		RateWindow:   sc.RateWindow.Duration,
		ReadTimeout:  sc.ReadTimeout.Duration,
		WriteTimeout: sc.WriteTimeout.Duration,
	}, server.Handlers{
		Health:   handler.NewHealthHandler(deps.Checks, a.logger),
		Wagers:   handler.NewWagerHandler(svc.wagers, paging, a.logger),
		Accounts: handler.NewAccountHandler(svc.accounts, paging, a.logger),
		Exports:  handler.NewExportHandler(svc.exports, a.logger),
		Markets:  handler.NewMarketHandler(deps.Catalog, a.logger),
	}, hub, deps.Limiter, a.logger)

	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
}

// startExportJob schedules the daily ledger snapshot.
func (a *App) startExportJob(ctx context.Context, g *errgroup.Group, exports *service.ExportService) error {
	job, err := newExportJob(a.cfg.Export.Cron, exports, a.logger)
	if err != nil {
		return err
	}
	g.Go(func() error {
		err := job.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	a.logger.InfoContext(ctx, "export schedule armed", slog.String("cron", a.cfg.Export.Cron))
	return nil
}
