package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, uint32(5), cfg.Resilience.BreakerFailures)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: postgres
database:
  url: postgres://file@localhost/engagement
http:
  port: 9000
  rate_limit_window: 30s
`), 0o600))

	t.Setenv("DATABASE_URL", "postgres://env@localhost/engagement")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://env@localhost/engagement", cfg.Database.URL)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RateLimitWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr())
}

func TestLoadFrom_UnmappedEnvIgnored(t *testing.T) {
	t.Setenv("HTTP_PORTX", "1")
	cfg, err := LoadFrom("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.Storage.Driver = DriverPostgres }, "DATABASE_URL"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "STORAGE_DRIVER"},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "HTTP_PORT"},
		{"nats without url", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }, "NATS_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
