package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
database:
  type: sqlite
  sqlite:
    path: `+filepath.Join(dir, "data", "panel.db")+`
media:
  root: `+filepath.Join(dir, "media")+`
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "2s", cfg.Webhook.Timeout)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.DirExists(t, filepath.Join(dir, "data"))
	assert.DirExists(t, filepath.Join(dir, "media"))
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
jwt:
  secret: from-file
media:
  root: `+filepath.Join(dir, "media")+`
database:
  sqlite:
    path: `+filepath.Join(dir, "panel.db")+`
`)
	t.Setenv("OFFICE_PANEL_JWT_SECRET", "from-env")
	t.Setenv("OFFICE_PANEL_WEBHOOK_URL", "http://hooks.local/notify")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "http://hooks.local/notify", cfg.Webhook.URL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown database", func(c *Config) { c.Database.Type = "oracle" }, "unsupported database type"},
		{"mysql needs user", func(c *Config) { c.Database.Type = "mysql" }, "MySQL username is required"},
		{"postgres needs database", func(c *Config) {
			c.Database.Type = "postgres"
			c.Database.Postgres.Username = "panel"
		}, "Postgres database name is required"},
		{"redis needs url", func(c *Config) { c.Cache.Backend = "redis" }, "redis_url is required"},
		{"bad duration", func(c *Config) { c.Webhook.Timeout = "soon" }, "webhook.timeout"},
		{"bad mode", func(c *Config) { c.Server.Mode = "turbo" }, "unsupported server mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, Duration("3s", time.Second))
	assert.Equal(t, time.Second, Duration("", time.Second))
	assert.Equal(t, time.Second, Duration("-5s", time.Second))
}
