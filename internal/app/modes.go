package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avierra/futmon/internal/render"
	"github.com/avierra/futmon/internal/server"
	"github.com/avierra/futmon/internal/server/handler"
	"github.com/avierra/futmon/internal/server/ws"
)

// shutdownTimeout bounds how long graceful HTTP shutdown may take.
const shutdownTimeout = 10 * time.Second

// ServeMode runs the refresh loop together with the HTTP + WebSocket API.
func (a *App) ServeMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting serve mode")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deps.Monitor.Run(ctx)
	})

	wsHub := ws.NewHub(deps.Reports, a.logger)
	deps.Monitor.OnPublish(wsHub.BroadcastReport)
	g.Go(func() error {
		return wsHub.Run(ctx)
	})

	startedAt := time.Now().UTC()
	handlers := server.Handlers{
		Health:  handler.NewHealthHandler(deps.Session, deps.Reports, startedAt),
		Status:  handler.NewStatusHandler(a.cfg.Mode, deps.Session, deps.Reports),
		Config:  handler.NewConfigHandler(deps.Session, a.logger),
		Account: handler.NewAccountHandler(deps.Reports),
		Report:  handler.NewReportHandler(deps.Reports),
		Orders:  handler.NewOrderHandler(deps.Session, a.cfg.Monitor.OrderHistoryLimit, a.logger),
		Refresh: handler.NewRefreshHandler(deps.Reports),
	}

	srv := server.NewServer(server.Config{
		Port:        a.cfg.Server.Port,
		CORSOrigins: a.cfg.Server.CORSOrigins,
		APIKey:      a.cfg.Server.ApiKey,
	}, handlers, wsHub, a.logger)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// MonitorMode runs the refresh loop headless. Reports reach operators through
// the notification channels and the optional Redis report cache.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting monitor mode")
	return deps.Monitor.Run(ctx)
}

// OnceMode runs a single refresh cycle, renders the report to stdout, and
// exits.
func (a *App) OnceMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting one-shot mode")

	report, err := deps.Monitor.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("app: one-shot refresh: %w", err)
	}

	render.Report(os.Stdout, report)
	return nil
}
