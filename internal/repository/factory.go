package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Driver names a repository implementation.
type Driver string

const (
	// DriverMemory keeps the collection in process memory only.
	DriverMemory Driver = "memory"
	// DriverAutomerge syncs an automerge document through the hub.
	DriverAutomerge Driver = "automerge"
	// DriverRedis stores snapshots in Redis and fans them out via pub/sub.
	DriverRedis Driver = "redis"
)

// Config selects and configures a repository driver.
type Config struct {
	Driver       Driver
	CollectionID string

	// Automerge driver settings.
	HubURL        string
	DocPath       string
	FlushInterval time.Duration
	ReconnectWait time.Duration
	Logger        *slog.Logger

	// Redis driver settings.
	RedisClient *redis.Client
}

// Open builds the repository named by cfg.Driver. An empty driver selects
// memory.
func Open(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.CollectionID == "" {
		return nil, fmt.Errorf("collection id is required")
	}
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryBroker().Collection(cfg.CollectionID), nil
	case DriverAutomerge:
		return NewAutomerge(ctx, AutomergeConfig{
			HubURL:        cfg.HubURL,
			CollectionID:  cfg.CollectionID,
			DocPath:       cfg.DocPath,
			FlushInterval: cfg.FlushInterval,
			ReconnectWait: cfg.ReconnectWait,
			Logger:        cfg.Logger,
		})
	case DriverRedis:
		return NewRedis(cfg.RedisClient, cfg.CollectionID)
	default:
		return nil, fmt.Errorf("unknown sync driver %q", cfg.Driver)
	}
}
