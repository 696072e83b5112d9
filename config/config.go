package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds all configuration for the API server.
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// Environment the process runs in
	Environment Environment

	// Sync configuration
	SyncDriver       string
	SyncCollectionID string
	SyncHubURL       string
	SyncDocPath      string

	// Redis configuration, used by the redis sync driver and the write
	// rate limiter
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// CORS configuration
	CORSAllowedOrigins []string

	// Rate limiting of write endpoints; requires Redis
	RateLimitEnabled bool
}

// LoadConfig builds a Config from environment variables, falling back to
// Docker secrets and finally to development defaults. Every value can be
// supplied either as an environment variable (upper case) or as a secret
// file (lower case) under the secrets directory.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment:      GetEnvironment(),
		ServerHost:       lookup("SERVER_HOST", "server_host", "0.0.0.0"),
		ServerPort:       lookup("SERVER_PORT", "server_port", "8080"),
		SyncDriver:       lookup("SYNC_DRIVER", "sync_driver", "memory"),
		SyncCollectionID: lookup("SYNC_COLLECTION_ID", "sync_collection_id", "family-cookbook"),
		SyncHubURL:       lookup("SYNC_HUB_URL", "sync_hub_url", ""),
		SyncDocPath:      lookup("SYNC_DOC_PATH", "sync_doc_path", ""),
		RedisURL:         lookup("REDIS_URL", "redis_url", ""),
		RedisPassword:    lookup("REDIS_PASSWORD", "redis_password", ""),
		RateLimitEnabled: lookup("RATE_LIMIT_ENABLED", "rate_limit_enabled", "false") == "true",
	}

	if raw := lookup("REDIS_DB", "redis_db", "0"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", raw, err)
		}
		cfg.RedisDB = db
	}

	origins := lookup("CORS_ALLOWED_ORIGINS", "cors_allowed_origins", "http://localhost:5173")
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// lookup resolves one configuration value: environment variable first,
// then Docker secret, then the default.
func lookup(envKey, secretName, fallback string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	if value := readSecret(secretName); value != "" {
		return value
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory.
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
