package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/simmer-app/simmer-backend/internal/hub"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := hub.DefaultConfig()
	if *configPath != "" {
		loaded, err := hub.LoadFromFile(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("failed to apply environment overrides: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Opening the storage migrates the schema.
	storage, err := hub.OpenStorage(cfg.Storage)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	if err := storage.Close(); err != nil {
		log.Fatalf("failed to close database: %v", err)
	}

	fmt.Println("All migrations applied successfully.")
}
