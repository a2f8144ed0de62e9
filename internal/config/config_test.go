package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
app:
  name: bookhub
  environment: test
http:
  addr: ":9090"
database:
  dsn: "test.db"
jwt:
  secret: "file-secret"
smtp:
  host: "smtp.example.com"
  port: 2525
  from: "noreply@example.com"
mailer:
  workers: 3
  queue_size: 16
logging:
  level: debug
  format: console
`)

	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SMTP_PORT", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "bookhub", cfg.App.Name)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "test.db", cfg.Database.DSN)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, 3, cfg.Mailer.Workers)
	assert.Equal(t, 16, cfg.Mailer.QueueSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: "from-file.db"
jwt:
  secret: "file-secret"
`)

	t.Setenv("DATABASE_URL", "postgres://env-wins")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("SMTP_PORT", "465")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env-wins", cfg.Database.DSN)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 465, cfg.SMTP.Port)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "app.db")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5, cfg.Mailer.Workers)
	assert.Equal(t, 64, cfg.Mailer.QueueSize)
	assert.Equal(t, "development", cfg.App.Environment)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("DATABASE_URL", "app.db")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err) // jwt secret still missing
}
