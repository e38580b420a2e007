package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "directory.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://r.jina.ai", cfg.Jina.BaseURL)
	assert.Equal(t, "https://api.firecrawl.dev/v1", cfg.Firecrawl.BaseURL)
	assert.Equal(t, "https://login.salesforce.com", cfg.Salesforce.Domain)
	assert.Len(t, cfg.Ingest.Sources, 2)
	assert.Equal(t, 25, cfg.Ingest.LimitPerSource)
	assert.Equal(t, 500, cfg.Ingest.CandidateDelayMS)
	assert.Equal(t, 3000, cfg.Ingest.SourceDelayMS)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/directory
log:
  level: debug
  format: console
server:
  port: 9090
ingest:
  limit_per_source: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Ingest.LimitPerSource)
	// Defaults still apply for unset values
	assert.Equal(t, 500, cfg.Ingest.CandidateDelayMS)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("DIRECTORY_STORE_DRIVER", "postgres")
	t.Setenv("DIRECTORY_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("DIRECTORY_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestValidateServe(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateServe()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "admin_user")

	cfg.Server.AdminUser = "admin"
	cfg.Server.AdminPassword = "hunter2"
	err = cfg.ValidateServe()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "session_secret")

	cfg.Server.SessionSecret = "0123456789abcdef"
	assert.NoError(t, cfg.ValidateServe())
}

func TestValidateIngest(t *testing.T) {
	cfg := &Config{}
	err := cfg.ValidateIngest()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "jina.key or firecrawl.key")

	cfg.Jina.Key = "jina_key"
	err = cfg.ValidateIngest()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key")

	cfg.Anthropic.Key = "sk-ant-key"
	err = cfg.ValidateIngest()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest.sources")

	cfg.Ingest.Sources = []string{"https://www.wiseradvisor.com/financial-advisors"}
	assert.NoError(t, cfg.ValidateIngest())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
