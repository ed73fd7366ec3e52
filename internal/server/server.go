// Package server exposes the ledger over HTTP and websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alanyoungcy/betledger/internal/domain"
	"github.com/alanyoungcy/betledger/internal/server/handler"
	"github.com/alanyoungcy/betledger/internal/server/middleware"
	"github.com/alanyoungcy/betledger/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port         int
	CORSOrigins  []string
	APIKey       string // empty disables authentication
	RateLimit    int    // requests per RateWindow per client; 0 disables
	RateWindow   time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health   *handler.HealthHandler
	Wagers   *handler.WagerHandler
	Accounts *handler.AccountHandler
	Exports  *handler.ExportHandler
	Markets  *handler.MarketHandler
}

// Server is the HTTP + WebSocket API for the wager ledger.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer registers every route and wraps the mux in the middleware chain.
// wsHub and limiter may be nil.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	logger = logger.With(slog.String("component", "server"))
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("POST /api/quotes", handlers.Wagers.Quote)

	mux.HandleFunc("POST /api/accounts", handlers.Accounts.Create)
	mux.HandleFunc("GET /api/accounts", handlers.Accounts.List)
	mux.HandleFunc("GET /api/accounts/{id}", handlers.Accounts.Get)
	mux.HandleFunc("GET /api/accounts/{id}/summary", handlers.Accounts.Summary)

	mux.HandleFunc("POST /api/wagers", handlers.Wagers.Place)
	mux.HandleFunc("GET /api/wagers", handlers.Wagers.List)
	mux.HandleFunc("GET /api/wagers/{id}", handlers.Wagers.Get)
	mux.HandleFunc("POST /api/wagers/{id}/settle", handlers.Wagers.Settle)
	mux.HandleFunc("POST /api/wagers/{id}/cancel", handlers.Wagers.Cancel)
	mux.HandleFunc("DELETE /api/wagers/{id}", handlers.Wagers.Delete)

	if handlers.Exports != nil {
		mux.HandleFunc("GET /api/export/wagers.csv", handlers.Exports.DownloadCSV)
		mux.HandleFunc("GET /api/export", handlers.Exports.List)
		mux.HandleFunc("POST /api/export", handlers.Exports.Upload)
	}

	mux.HandleFunc("GET /api/markets", handlers.Markets.List)
	mux.HandleFunc("GET /api/markets/{key}", handlers.Markets.Get)

	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.RateLimit(limiter, cfg.RateLimit, cfg.RateWindow, logger)(h)
	h = middleware.Auth(cfg.APIKey, "/api/health")(h)
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           h,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
