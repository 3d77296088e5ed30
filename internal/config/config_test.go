package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaultsWithEnvSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Mode)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "./uploads", cfg.Storage.Path)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, "1h", cfg.JWT.AccessTokenExpiration)
}

func TestLoadConfigMissingSecretFails(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: "9090"
jwt:
  secret: "file-secret"
database:
  host: "db.internal"
`)
	require.NoError(t, os.WriteFile(configPath, content, 0o600))

	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DB_MAX_OPEN_CONNS", "42")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port, "env beats file")
	assert.Equal(t, "db.internal", cfg.Database.Host, "file beats default")
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 42, cfg.Database.MaxOpenConns)
}

func TestGetPostgresConnectionString(t *testing.T) {
	cfg := &Config{}
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.DBName = "studyshare"

	assert.Equal(t,
		"postgres://app:pw@localhost:5432/studyshare?sslmode=disable",
		cfg.GetPostgresConnectionString())
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SOME_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("SOME_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("SOME_MISSING_KEY", "fallback"))
}
