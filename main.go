package main

import (
	"log"

	"github.com/joho/godotenv"

	"battwatch/adapters/api"
	"battwatch/adapters/db"
	"battwatch/internal"
	"battwatch/internal/config"
	"battwatch/internal/store"
	"battwatch/ports"
	"battwatch/ui"
)

// main runs the dashboard and the JSON API in one process. The
// separate cmd/ui and cmd/api binaries exist for running the surfaces
// independently.
func main() {
	logger := internal.DefaultLogger

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
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
		// The dashboard works without upload history.
		logger.Warn("Upload registry unavailable: %v", err)
		registry = nil
	}

	app, err := ui.NewApp(cfg, artifactStore, registry)
	if err != nil {
		log.Fatalf("Failed to create dashboard app: %v", err)
	}

	apiServer := api.NewServer(cfg, artifactStore, registry)
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	logger.Info("Battery dashboard on http://localhost:%s, API on http://localhost:%s", cfg.Server.Port, cfg.Server.APIPort)
	log.Fatal(app.Start())
}
