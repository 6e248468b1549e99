package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATABASE_URL", "JWT_SECRET", "OPS_EMAILS", "TELEGRAM_OPS_CHAT_ID"} {
		t.Setenv(k, "")
	}
}

func TestLoad_YAMLAndDefaults(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
server:
  port: 9090
database:
  url: postgres://casa:pw@localhost:5432/casa?sslmode=disable
auth:
  token_ttl: 2h
email:
  smtp_host: smtp.example.com
  ops_emails: [ops@casasmart.sa]
booking_limit:
  window: 30m
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://casa:pw@localhost:5432/casa?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"ops@casasmart.sa"}, cfg.Email.OpsEmails)
	assert.Equal(t, 30*time.Minute, cfg.BookingLimit.Window)

	// значения по умолчанию
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, 3, cfg.BookingLimit.Max)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeYAML(t, "server:\n  port: 9090\n")
	t.Setenv("PORT", "7000")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("OPS_EMAILS", "a@casasmart.sa, b@casasmart.sa,")
	t.Setenv("TELEGRAM_OPS_CHAT_ID", "-1001234")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "postgres://env", cfg.Database.DSN)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"a@casasmart.sa", "b@casasmart.sa"}, cfg.Email.OpsEmails)
	assert.Equal(t, int64(-1001234), cfg.Telegram.OpsChatID)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeYAML(t, "server: [broken"))
	assert.Error(t, err)

	t.Setenv("PORT", "eighty")
	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
