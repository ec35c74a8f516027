package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avierra/futmon/internal/cache/redis"
	"github.com/avierra/futmon/internal/config"
	"github.com/avierra/futmon/internal/crypto"
	"github.com/avierra/futmon/internal/monitor"
	"github.com/avierra/futmon/internal/notify"
	"github.com/avierra/futmon/internal/service"
)

// Dependencies bundles everything the application modes need to operate. It
// is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Monitor  *monitor.Monitor
	Session  *service.Session
	Reports  *service.ReportService
	Notifier *notify.Notifier
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

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	notifier := notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Refresh loop ---
	opts := []monitor.Option{monitor.WithNotifier(notifier)}

	// --- Redis report cache (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		opts = append(opts, monitor.WithReportCache(
			redis.NewReportCache(redisClient, cfg.Redis.ReportTTL.Duration),
		))
	}

	// Fetchers are installed by Session.Configure once credentials are known.
	mon := monitor.New(nil, nil, cfg.Monitor.RefreshInterval.Duration, logger, opts...)

	session := service.NewSession(cfg.Bingx.BaseURL, mon, logger)
	reports := service.NewReportService(mon, logger)

	// --- Credentials (optional at startup in serve mode) ---
	if cfg.Bingx.ApiKey != "" || cfg.Bingx.EncryptedCredentials != "" {
		apiKey, apiSecret, err := crypto.LoadCredentials(crypto.CredentialConfig{
			APIKey:        cfg.Bingx.ApiKey,
			APISecret:     cfg.Bingx.ApiSecret,
			EncryptedPath: cfg.Bingx.EncryptedCredentials,
			Password:      cfg.Bingx.CredentialsPassword,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: credentials: %w", err)
		}
		if err := session.Configure(ctx, apiKey, apiSecret); err != nil {
			// The serve mode accepts credentials later via POST /api/config;
			// the headless modes cannot run without working credentials.
			if strings.ToLower(cfg.Mode) == "serve" {
				logger.WarnContext(ctx, "wire: startup credentials rejected, serving unconfigured",
					slog.String("error", err.Error()),
				)
			} else {
				cleanup()
				return nil, nil, fmt.Errorf("wire: configure session: %w", err)
			}
		}
	}

	return &Dependencies{
		Monitor:  mon,
		Session:  session,
		Reports:  reports,
		Notifier: notifier,
	}, cleanup, nil
}
