package hub

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "0.0.0.0:8090", cfg.ListenAddr)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "syncd.sqlite3", cfg.Storage.DSN)
	assert.Equal(t, 5*time.Second, cfg.CheckpointInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing listen addr",
			modify:  func(c *Config) { c.ListenAddr = "" },
			wantErr: true,
		},
		{
			name:    "unknown storage driver",
			modify:  func(c *Config) { c.Storage.Driver = "mysql" },
			wantErr: true,
		},
		{
			name:    "missing storage dsn",
			modify:  func(c *Config) { c.Storage.DSN = "" },
			wantErr: true,
		},
		{
			name:    "zero checkpoint interval",
			modify:  func(c *Config) { c.CheckpointInterval = 0 },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
listen_addr: "127.0.0.1:9999"
storage:
  driver: postgres
  dsn: "host=localhost user=syncd dbname=syncd"
checkpoint_interval: 30s
log_level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.ListenAddr)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "host=localhost user=syncd dbname=syncd", cfg.Storage.DSN)
	assert.Equal(t, 30*time.Second, cfg.CheckpointInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte("listen_addr: \":7070\"\n"), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.CheckpointInterval)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SYNCD_LISTEN_ADDR", "127.0.0.1:8123")
	t.Setenv("SYNCD_STORAGE_DRIVER", "postgres")
	t.Setenv("SYNCD_STORAGE_DSN", "host=db user=syncd")
	t.Setenv("SYNCD_CHECKPOINT_INTERVAL", "2m")
	t.Setenv("SYNCD_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "127.0.0.1:8123", cfg.ListenAddr)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "host=db user=syncd", cfg.Storage.DSN)
	assert.Equal(t, 2*time.Minute, cfg.CheckpointInterval)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestApplyEnvRejectsBadInterval(t *testing.T) {
	t.Setenv("SYNCD_CHECKPOINT_INTERVAL", "soon")

	cfg := DefaultConfig()
	assert.Error(t, cfg.ApplyEnv())
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())

	cfg.LogLevel = "debug"
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())

	cfg.LogLevel = "error"
	assert.Equal(t, slog.LevelError, cfg.SlogLevel())
}
