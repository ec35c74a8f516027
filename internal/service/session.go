package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/avierra/futmon/internal/crypto"
	"github.com/avierra/futmon/internal/domain"
	"github.com/avierra/futmon/internal/monitor"
	"github.com/avierra/futmon/internal/platform/bingx"
)

// Session owns the exchange credential lifetime. Configuring a session
// builds a fresh signer, probes it against the exchange, and swaps the
// account adapters into the refresh loop atomically. Until the first
// successful Configure the session reports ErrNotConfigured.
type Session struct {
	baseURL    string
	httpClient *http.Client
	mon        *monitor.Monitor
	logger     *slog.Logger

	mu     sync.RWMutex
	client *bingx.Client
	std    *bingx.StandardAdapter
}

// NewSession creates a Session targeting the given exchange base URL.
func NewSession(baseURL string, mon *monitor.Monitor, logger *slog.Logger) *Session {
	return &Session{
		baseURL: baseURL,
		mon:     mon,
		logger:  logger,
	}
}

// SetHTTPClient overrides the HTTP client used for newly configured
// exchange clients. Intended for tests.
func (s *Session) SetHTTPClient(hc *http.Client) {
	s.httpClient = hc
}

// Configure validates the given credentials against the exchange and, on
// success, installs new account adapters into the refresh loop. A failed
// probe leaves any previously configured adapters untouched.
func (s *Session) Configure(ctx context.Context, apiKey, apiSecret string) error {
	if apiKey == "" || apiSecret == "" {
		return fmt.Errorf("session: %w", domain.ErrNotConfigured)
	}

	signer := crypto.NewRequestSigner(apiKey, apiSecret)
	client := bingx.NewClient(s.baseURL, signer, s.logger)
	if s.httpClient != nil {
		client.SetHTTPClient(s.httpClient)
	}

	if err := client.Ping(ctx); err != nil {
		return fmt.Errorf("session: credential probe: %w", err)
	}

	perp := bingx.NewPerpetualAdapter(client, s.logger)
	std := bingx.NewStandardAdapter(client, s.logger)

	s.mu.Lock()
	s.client = client
	s.std = std
	s.mu.Unlock()

	s.mon.SetFetchers(perp, std)
	s.mon.TriggerRefresh()

	s.logger.InfoContext(ctx, "session: credentials configured",
		slog.String("signer", signer.String()),
	)
	return nil
}

// Configured reports whether a credential probe has succeeded.
func (s *Session) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// Ping verifies connectivity with the currently configured credentials.
func (s *Session) Ping(ctx context.Context) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return domain.ErrNotConfigured
	}
	return client.Ping(ctx)
}

// OrderHistory fetches recent standard-contract orders. The limit is
// clamped by the adapter; zero selects the adapter default.
func (s *Session) OrderHistory(ctx context.Context, limit int) ([]domain.OrderRecord, error) {
	s.mu.RLock()
	std := s.std
	s.mu.RUnlock()

	if std == nil {
		return nil, domain.ErrNotConfigured
	}

	orders, err := std.FetchOrderHistory(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("session: order history: %w", err)
	}
	return orders, nil
}
