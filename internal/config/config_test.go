package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "serve", cfg.Mode)
	assert.Equal(t, 30*time.Second, cfg.Monitor.RefreshInterval.Duration)
	assert.Equal(t, "https://open-api.bingx.com", cfg.Bingx.BaseURL)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "monitor"
log_level = "debug"

[bingx]
api_key = "k"
api_secret = "s"

[monitor]
refresh_interval = "45s"

[server]
enabled = false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "monitor", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 45*time.Second, cfg.Monitor.RefreshInterval.Duration)
	assert.False(t, cfg.Server.Enabled)
	// Values not present in the file keep their defaults.
	assert.Equal(t, 50, cfg.Monitor.OrderHistoryLimit)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FUTMON_BINGX_API_KEY", "env-key")
	t.Setenv("FUTMON_BINGX_API_SECRET", "env-secret")
	t.Setenv("FUTMON_MONITOR_REFRESH_INTERVAL", "2m")
	t.Setenv("FUTMON_SERVER_PORT", "9100")
	t.Setenv("FUTMON_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FUTMON_MODE", "once")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Bingx.ApiKey)
	assert.Equal(t, "env-secret", cfg.Bingx.ApiSecret)
	assert.Equal(t, 2*time.Minute, cfg.Monitor.RefreshInterval.Duration)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "once", cfg.Mode)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "dance"
	cfg.LogLevel = "loud"
	cfg.Monitor.RefreshInterval.Duration = 0
	cfg.Server.Port = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "unknown log_level")
	assert.Contains(t, err.Error(), "refresh_interval")
	assert.Contains(t, err.Error(), "port")
}

func TestValidateCredentialPairing(t *testing.T) {
	cfg := Defaults()
	cfg.Bingx.ApiKey = "only-key"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key and api_secret must be set together")
}

func TestValidateHeadlessModesNeedCredentials(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "once"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credentials are required")

	cfg.Bingx.ApiKey = "k"
	cfg.Bingx.ApiSecret = "s"
	assert.NoError(t, cfg.Validate())
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Bingx.ApiKey = "key"
	cfg.Bingx.ApiSecret = "secret"
	cfg.Redis.Password = "redis-pw"
	cfg.Notify.TelegramToken = "tg-token"

	red := RedactedConfig(&cfg)

	assert.Equal(t, "***", red.Bingx.ApiKey)
	assert.Equal(t, "***", red.Bingx.ApiSecret)
	assert.Equal(t, "***", red.Redis.Password)
	assert.Equal(t, "***", red.Notify.TelegramToken)

	// The original is untouched.
	assert.Equal(t, "secret", cfg.Bingx.ApiSecret)
}
