// Package server hosts the HTTP + WebSocket API in front of the monitor.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avierra/futmon/internal/server/handler"
	"github.com/avierra/futmon/internal/server/middleware"
	"github.com/avierra/futmon/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Status  *handler.StatusHandler
	Config  *handler.ConfigHandler
	Account *handler.AccountHandler
	Report  *handler.ReportHandler
	Orders  *handler.OrderHandler
	Refresh *handler.RefreshHandler
}

// Server is the headless HTTP + WebSocket API server for the futures monitor.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (logging, CORS, auth) and attaches the WebSocket hub.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// --- Register routes ---

	// Health check (no auth required; see authExempt below).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Status and runtime configuration.
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)
	mux.HandleFunc("POST /api/config", handlers.Config.UpdateConfig)

	// Balance and position views.
	mux.HandleFunc("GET /api/balance/{account}", handlers.Account.GetBalance)
	mux.HandleFunc("GET /api/positions", handlers.Account.ListPositions)
	mux.HandleFunc("GET /api/positions/{account}", handlers.Account.GetPositions)

	// Consolidated report and derived statistics.
	mux.HandleFunc("GET /api/report", handlers.Report.GetReport)
	mux.HandleFunc("GET /api/stats/summary", handlers.Report.GetStatsSummary)

	// Order history.
	mux.HandleFunc("GET /api/orders/history", handlers.Orders.GetHistory)

	// Manual refresh trigger.
	mux.HandleFunc("POST /api/refresh", handlers.Refresh.TriggerRefresh)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux
	h = authExempt(middleware.Auth(cfg.APIKey), h)
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
		mux:        mux,
		logger:     logger,
	}
}

// authExempt wraps the auth middleware so the health endpoint stays reachable
// for load balancer probes even when an API key is configured.
func authExempt(auth func(http.Handler) http.Handler, next http.Handler) http.Handler {
	authed := auth(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			next.ServeHTTP(w, r)
			return
		}
		authed.ServeHTTP(w, r)
	})
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
