package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "plaza-helpers.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 60, cfg.Sync.RequestsPerMinute)
	assert.Equal(t, 50, cfg.Sync.MaxPages)
	assert.Equal(t, 10*time.Minute, cfg.Sync.Timeout)
	assert.False(t, cfg.Plaza.TestMode)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plaza.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: production
  port: "9000"
plaza:
  public_key: pub
  private_key: from-file
  test_mode: true
log:
  format: json
sync:
  requests_per_minute: 20
`), 0o600))

	t.Setenv("PLAZA_PLAZA_PRIVATE_KEY", "from-env")
	t.Setenv("PLAZA_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "pub", cfg.Plaza.PublicKey)
	assert.Equal(t, "from-env", cfg.Plaza.PrivateKey)
	assert.True(t, cfg.Plaza.TestMode)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20, cfg.Sync.RequestsPerMinute)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:      AppConfig{Env: "development", Port: "8080"},
			Database: DatabaseConfig{Path: "x.db"},
			Log:      LogConfig{Level: "info", Format: "json"},
			Sync:     SyncConfig{RequestsPerMinute: 1, MaxPages: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad env", func(c *Config) { c.App.Env = "staging" }, true},
		{"non numeric port", func(c *Config) { c.App.Port = "http" }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"public key without private key", func(c *Config) { c.Plaza.PublicKey = "pub" }, true},
		{"key pair", func(c *Config) { c.Plaza.PublicKey = "pub"; c.Plaza.PrivateKey = "priv" }, false},
		{"bad base url", func(c *Config) { c.Plaza.BaseURL = "::nope" }, true},
		{"zero rate", func(c *Config) { c.Sync.RequestsPerMinute = 0 }, true},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
