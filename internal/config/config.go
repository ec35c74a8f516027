// Package config defines the top-level configuration for the futures
// monitor and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by FUTMON_* environment variables.
type Config struct {
	Bingx    BingxConfig   `toml:"bingx"`
	Monitor  MonitorConfig `toml:"monitor"`
	Redis    RedisConfig   `toml:"redis"`
	Server   ServerConfig  `toml:"server"`
	Notify   NotifyConfig  `toml:"notify"`
	Mode     string        `toml:"mode"`
	LogLevel string        `toml:"log_level"`
}

// BingxConfig holds exchange endpoint and credential parameters. Credentials
// may come from plain fields, from an encrypted credential file, or be left
// empty and supplied later through the configuration endpoint.
type BingxConfig struct {
	BaseURL              string `toml:"base_url"`
	ApiKey               string `toml:"api_key"`
	ApiSecret            string `toml:"api_secret"`
	EncryptedCredentials string `toml:"encrypted_credentials"`
	CredentialsPassword  string `toml:"credentials_password"`
}

// MonitorConfig holds refresh loop parameters.
type MonitorConfig struct {
	RefreshInterval   duration `toml:"refresh_interval"`
	OrderHistoryLimit int      `toml:"order_history_limit"`
}

// RedisConfig holds Redis connection parameters for the report cache.
type RedisConfig struct {
	Enabled    bool     `toml:"enabled"`
	Addr       string   `toml:"addr"`
	Password   string   `toml:"password"`
	DB         int      `toml:"db"`
	PoolSize   int      `toml:"pool_size"`
	MaxRetries int      `toml:"max_retries"`
	TLSEnabled bool     `toml:"tls_enabled"`
	ReportTTL  duration `toml:"report_ttl"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	ApiKey      string   `toml:"api_key"` // if empty, authentication is disabled
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "30s", "5m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "30s" or "5m".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Bingx: BingxConfig{
			BaseURL: "https://open-api.bingx.com",
		},
		Monitor: MonitorConfig{
			RefreshInterval:   duration{30 * time.Second},
			OrderHistoryLimit: 50,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   10,
			MaxRetries: 3,
			TLSEnabled: false,
			ReportTTL:  duration{10 * time.Minute},
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Notify: NotifyConfig{
			Events: []string{"refresh_failed", "refresh_recovered"},
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"serve":   true,
	"monitor": true,
	"once":    true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: serve, monitor, once)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Bingx
	if c.Bingx.BaseURL == "" {
		errs = append(errs, "bingx: base_url must not be empty")
	}
	if (c.Bingx.ApiKey == "") != (c.Bingx.ApiSecret == "") {
		errs = append(errs, "bingx: api_key and api_secret must be set together")
	}
	if c.Bingx.EncryptedCredentials != "" && c.Bingx.CredentialsPassword == "" {
		errs = append(errs, "bingx: credentials_password is required when encrypted_credentials is set")
	}

	// Credentials are mandatory for the headless modes; the serve mode can
	// accept them later via POST /api/config.
	mode := strings.ToLower(c.Mode)
	if mode == "monitor" || mode == "once" {
		if c.Bingx.ApiKey == "" && c.Bingx.EncryptedCredentials == "" {
			errs = append(errs, "bingx: credentials are required for mode "+mode)
		}
	}

	// Monitor
	if c.Monitor.RefreshInterval.Duration <= 0 {
		errs = append(errs, "monitor: refresh_interval must be > 0")
	}
	if c.Monitor.OrderHistoryLimit < 1 {
		errs = append(errs, "monitor: order_history_limit must be >= 1")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
		if c.Redis.ReportTTL.Duration <= 0 {
			errs = append(errs, "redis: report_ttl must be > 0")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
