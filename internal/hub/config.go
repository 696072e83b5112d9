// Package hub implements the synchronization hub. It hosts the
// authoritative document for every collection, speaks the sync protocol
// over websockets and checkpoints changed documents to storage.
package hub

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete hub configuration
type Config struct {
	// ListenAddr is the address the HTTP server binds to
	ListenAddr string `yaml:"listen_addr"`
	// Storage configures the checkpoint backend
	Storage StorageConfig `yaml:"storage"`
	// CheckpointInterval is how often changed documents are written to
	// storage
	CheckpointInterval time.Duration `yaml:"checkpoint_interval"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// StorageConfig configures the checkpoint backend
type StorageConfig struct {
	// Driver selects the storage backend: sqlite or postgres
	Driver string `yaml:"driver"`
	// DSN is the driver-specific data source name
	DSN string `yaml:"dsn"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: "0.0.0.0:8090",
		Storage: StorageConfig{
			Driver: "sqlite",
			DSN:    "syncd.sqlite3",
		},
		CheckpointInterval: 5 * time.Second,
		LogLevel:           "info",
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.Storage.Driver != "sqlite" && c.Storage.Driver != "postgres" {
		return fmt.Errorf("storage.driver must be sqlite or postgres")
	}
	if c.Storage.DSN == "" {
		return fmt.Errorf("storage.dsn is required")
	}
	if c.CheckpointInterval <= 0 {
		return fmt.Errorf("checkpoint_interval must be positive")
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides configuration values from SYNCD_* environment
// variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("SYNCD_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("SYNCD_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("SYNCD_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("SYNCD_CHECKPOINT_INTERVAL"); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SYNCD_CHECKPOINT_INTERVAL: %w", err)
		}
		c.CheckpointInterval = interval
	}
	if v := os.Getenv("SYNCD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// SlogLevel returns the slog level for the configured log level. Validate
// must have accepted the config first.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
