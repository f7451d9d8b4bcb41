package main

import (
	"log"
	"os"

	"github.com/hourglasshq/hourglass/internal/config"
	"github.com/hourglasshq/hourglass/internal/db"
	"github.com/hourglasshq/hourglass/internal/logger"
	"github.com/hourglasshq/hourglass/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}

	if err := logger.Init(logger.Config{
		Level:    logger.ParseLevel(cfg.LogLevel),
		FilePath: cfg.LogFile,
		Console:  true,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	database, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	srv := server.New(database, cfg)
	defer func() {
		if err := srv.Close(); err != nil {
			log.Printf("Error closing server: %v", err)
		}
	}()

	log.Printf("Hourglass API server starting on %s", cfg.ListenAddr)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
