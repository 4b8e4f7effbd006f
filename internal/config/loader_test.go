package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("CN_TEST_HOST", "db.internal")

	assert.Equal(t, "host: db.internal", expandEnv("host: ${CN_TEST_HOST}"))
	assert.Equal(t, "host: db.internal", expandEnv("host: ${CN_TEST_HOST:localhost}"))
	assert.Equal(t, "port: 5432", expandEnv("port: ${CN_TEST_UNSET_PORT:5432}"))
	assert.Equal(t, "key: ", expandEnv("key: ${CN_TEST_UNSET_KEY:}"))
	assert.Equal(t, "key: ${CN_TEST_UNSET_KEY}", expandEnv("key: ${CN_TEST_UNSET_KEY}"))
}

func TestLoadFromAppliesDefaultsAndOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
server:
  http:
    port: 9090
llm:
  providers:
    openai:
      model: gpt-4o-mini
`)
	writeFile(t, dir, "config.staging.yaml", `
observability:
  logging:
    level: warn
`)
	t.Setenv("APP_ENV", "staging")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Env)
	assert.Equal(t, 9090, cfg.Server.HTTP.Port)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.LLM.Retry.Delay)
	assert.Equal(t, "openai", cfg.LLM.DefaultProvider)

	provider := cfg.LLM.Providers["openai"]
	assert.Equal(t, "gpt-4o-mini", provider.Model)
	assert.Equal(t, APIChat, provider.API)
	assert.Equal(t, 500, provider.MaxTokens)
	assert.InDelta(t, 0.7, provider.Temperature, 1e-9)
}

func TestLoadFromBindsProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "app:\n  name: collab-novel-api\n")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/novel?sslmode=disable")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@db:5432/novel?sslmode=disable", cfg.Database.Postgres.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/novel?sslmode=disable", cfg.Database.Postgres.MigrationURL())
	assert.Equal(t, "s3cret", cfg.Security.JWT.Secret)
}

func TestLoadFromMissingBaseFile(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	assert.Error(t, err)
}

func TestPostgresDSNFromParts(t *testing.T) {
	c := PostgresConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=d sslmode=disable", c.DSN())
	assert.Equal(t, "postgres://u:p@localhost:5432/d?sslmode=disable", c.MigrationURL())
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		LLM: LLMConfig{
			DefaultProvider: "openai",
			Providers:       map[string]ProviderConfig{"openai": {}},
			Retry:           RetryConfig{MaxAttempts: 3},
		},
		Security: SecurityConfig{AuthEnabled: true, JWT: JWTConfig{Secret: "x"}},
	}
	require.NoError(t, cfg.Validate())

	cfg.Security.JWT.Secret = ""
	assert.Error(t, cfg.Validate())

	cfg.Security.JWT.Secret = "x"
	cfg.LLM.Retry.MaxAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg.LLM.Retry.MaxAttempts = 3
	cfg.LLM.DefaultProvider = "missing"
	assert.Error(t, cfg.Validate())
}
