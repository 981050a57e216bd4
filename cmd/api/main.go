package main

import (
	"log"

	"github.com/joho/godotenv"

	"battwatch/adapters/api"
	"battwatch/adapters/db"
	"battwatch/internal/config"
	"battwatch/internal/store"
	"battwatch/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	artifactStore, err := store.NewArtifactStore(cfg.Paths.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize artifact store: %v", err)
	}

	var registry ports.UploadRegistry
	registry, err = db.Open(cfg)
	if err != nil {
		log.Printf("[WARN] Upload registry unavailable: %v", err)
		registry = nil
	}

	log.Fatal(api.NewServer(cfg, artifactStore, registry).Start())
}
