package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies FUTMON_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known FUTMON_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Bingx ──
	setStr(&cfg.Bingx.BaseURL, "FUTMON_BINGX_BASE_URL")
	setStr(&cfg.Bingx.ApiKey, "FUTMON_BINGX_API_KEY")
	setStr(&cfg.Bingx.ApiSecret, "FUTMON_BINGX_API_SECRET")
	setStr(&cfg.Bingx.EncryptedCredentials, "FUTMON_BINGX_ENCRYPTED_CREDENTIALS")
	setStr(&cfg.Bingx.CredentialsPassword, "FUTMON_BINGX_CREDENTIALS_PASSWORD")

	// ── Monitor ──
	setDuration(&cfg.Monitor.RefreshInterval, "FUTMON_MONITOR_REFRESH_INTERVAL")
	setInt(&cfg.Monitor.OrderHistoryLimit, "FUTMON_MONITOR_ORDER_HISTORY_LIMIT")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "FUTMON_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "FUTMON_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "FUTMON_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "FUTMON_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "FUTMON_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "FUTMON_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "FUTMON_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.ReportTTL, "FUTMON_REDIS_REPORT_TTL")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "FUTMON_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "FUTMON_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "FUTMON_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.ApiKey, "FUTMON_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "FUTMON_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "FUTMON_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "FUTMON_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "FUTMON_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "FUTMON_MODE")
	setStr(&cfg.LogLevel, "FUTMON_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
