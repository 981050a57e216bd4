package main

import (
	"log"

	"github.com/joho/godotenv"

	"battwatch/adapters/db"
	"battwatch/internal/config"
	"battwatch/internal/store"
	"battwatch/ports"
	"battwatch/ui"
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

	app, err := ui.NewApp(cfg, artifactStore, registry)
	if err != nil {
		log.Fatalf("Failed to create dashboard app: %v", err)
	}

	log.Printf("Starting battery dashboard on http://localhost:%s", cfg.Server.Port)
	log.Fatal(app.Start())
}
