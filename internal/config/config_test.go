package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 8080
  allowed_origins: ["https://app.example.com"]
database:
  host: db
  password: file-password
jwt:
  secret: file-secret
  expiry_hours: 12
rate_limit:
  requests: 50
  window: 10m
assistant:
  requests_per_minute: 5
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_FileAndDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 12*time.Hour, cfg.JWT.Expiry())
	assert.Equal(t, 50, cfg.RateLimit.Requests)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 3, cfg.Upload.MaxFiles)
	assert.Equal(t, 5, cfg.Assistant.RequestsPerMinute)
	assert.Equal(t, 40000, cfg.Assistant.TokensPerMinute)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadConfig_SecretsOverride(t *testing.T) {
	t.Setenv("BOOKING_JWT_SECRET", "env-secret")
	t.Setenv("BOOKING_DB_PASSWORD", "env-password")

	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, "env-password", cfg.Database.Password)
	assert.Contains(t, cfg.Database.DSN(), "password=env-password")
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "server:\n  port: 8080\n"))
	assert.EqualError(t, err, "jwt secret is required")
}
