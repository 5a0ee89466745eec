package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/licitapp/licitapp/internal/api"
	"github.com/licitapp/licitapp/internal/db"
	"github.com/licitapp/licitapp/internal/placsp"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	cfg, err := placsp.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load sync config: %v", err)
	}

	snapshotPath := os.Getenv("LICITAPP_SNAPSHOT")
	if snapshotPath == "" {
		snapshotPath = filepath.Join(cfg.OutputDir, "tenders-active.json")
	}

	srv := api.NewServer(pool, snapshotPath, cfg)
	if err := srv.ReloadSnapshot(); err != nil {
		// The server still starts; tender endpoints answer 503 until a
		// sync or reload produces a snapshot.
		log.Printf("Snapshot not loaded: %v", err)
	}

	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
