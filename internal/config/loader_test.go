package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 50000, cfg.Ingestion.ChunkSize)
	assert.Equal(t, 5000, cfg.Ingestion.SubBatchSize)
	assert.Equal(t, int64(600<<20), cfg.Ingestion.MaxUploadBytes)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_FileThenEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := `
database:
  driver: sqlite
  path: /var/lib/salesingest/data.sqlite
ingestion:
  chunk_size: 1000
log:
  level: debug
server:
  allowed_origins:
    - https://sales.example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("SALESINGEST_INGESTION_SUB_BATCH_SIZE", "250")
	t.Setenv("SALESINGEST_SERVER_ADDR", ":9090")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/var/lib/salesingest/data.sqlite", cfg.Database.Path)
	assert.Equal(t, 1000, cfg.Ingestion.ChunkSize)
	assert.Equal(t, 250, cfg.Ingestion.SubBatchSize)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://sales.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }, true},
		{"sqlite without path", func(c *Config) { c.Database.Driver = DriverSQLite; c.Database.Path = "" }, true},
		{"sqlserver without host", func(c *Config) { c.Database.Driver = DriverSQLServer; c.Database.Host = "" }, true},
		{"zero chunk size", func(c *Config) { c.Ingestion.ChunkSize = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}
