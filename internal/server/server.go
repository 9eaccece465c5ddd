// Package server assembles the HTTP API: routing, middleware, lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lantern-fi/suipool/internal/server/handler"
	"github.com/lantern-fi/suipool/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Pools   *handler.PoolHandler
	Bundles *handler.BundleHandler
	Orders  *handler.OrderHandler
}

// Server is the headless HTTP API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux
// and the logging and CORS middleware applied.
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	mux.HandleFunc("GET /api/pools/{id}", handlers.Pools.GetPool)
	mux.HandleFunc("GET /api/pools/{id}/volume", handlers.Pools.GetVolume)
	mux.HandleFunc("GET /api/pools/{id}/series", handlers.Pools.GetVolumeSeries)

	mux.HandleFunc("POST /api/bundles/swap", handlers.Bundles.BuildSwap)
	mux.HandleFunc("POST /api/bundles/deposit", handlers.Bundles.BuildDeposit)
	mux.HandleFunc("POST /api/bundles/withdraw", handlers.Bundles.BuildWithdraw)

	mux.HandleFunc("POST /api/orders/limit", handlers.Orders.PlaceLimitOrder)
	mux.HandleFunc("GET /api/orders/limit", handlers.Orders.ListLimitOrders)
	mux.HandleFunc("DELETE /api/orders/limit/{id}", handlers.Orders.CancelLimitOrder)
	mux.HandleFunc("POST /api/orders/dca", handlers.Orders.PlaceDCAOrder)
	mux.HandleFunc("GET /api/orders/dca", handlers.Orders.ListDCAOrders)
	mux.HandleFunc("DELETE /api/orders/dca/{id}", handlers.Orders.CancelDCAOrder)

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
