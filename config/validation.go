package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validDrivers = map[string]bool{
	"memory":    true,
	"automerge": true,
	"redis":     true,
}

// ValidateConfig checks that the configuration is internally consistent
// and that the selected sync driver has everything it needs.
func ValidateConfig(cfg *Config) error {
	var errors []ValidationError
	add := func(field, message string) {
		errors = append(errors, ValidationError{Field: field, Message: message})
	}

	if cfg.ServerPort == "" {
		add("SERVER_PORT", "server port is required")
	}
	if cfg.SyncCollectionID == "" {
		add("SYNC_COLLECTION_ID", "collection id is required")
	}

	if !validDrivers[cfg.SyncDriver] {
		add("SYNC_DRIVER", fmt.Sprintf("unknown sync driver %q (expected memory, automerge or redis)", cfg.SyncDriver))
	}

	switch cfg.SyncDriver {
	case "memory":
		// The memory driver loses everything on restart, which is fine
		// everywhere except production.
		if cfg.Environment == Production {
			add("SYNC_DRIVER", "the memory driver does not persist; use automerge or redis in production")
		}
	case "automerge":
		if cfg.SyncHubURL == "" {
			add("SYNC_HUB_URL", "hub URL is required by the automerge driver")
		} else if u, err := url.Parse(cfg.SyncHubURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("SYNC_HUB_URL", fmt.Sprintf("invalid hub URL %q", cfg.SyncHubURL))
		}
	case "redis":
		if cfg.RedisURL == "" {
			add("REDIS_URL", "redis URL is required by the redis driver")
		}
	}

	if cfg.RateLimitEnabled && cfg.RedisURL == "" {
		add("RATE_LIMIT_ENABLED", "rate limiting requires REDIS_URL")
	}

	if len(errors) > 0 {
		messages := make([]string, len(errors))
		for i, e := range errors {
			messages[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(messages, "\n"))
	}
	return nil
}
