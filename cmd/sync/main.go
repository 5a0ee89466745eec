package main

import (
	"context"
	"flag"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/licitapp/licitapp/internal/db"
	"github.com/licitapp/licitapp/internal/placsp"
)

func main() {
	configPath := flag.String("config", "", "path to a sync config file (defaults to the embedded one)")
	noDB := flag.Bool("no-db", false, "skip database run bookkeeping")
	flag.Parse()

	cfg, err := placsp.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load sync config: %v", err)
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	if !*noDB {
		pool, err = db.Connect(ctx)
		if err != nil {
			log.Printf("Database unavailable, continuing without run bookkeeping: %v", err)
			pool = nil
		} else {
			defer pool.Close()
			if err := db.ApplyMigrations(ctx, pool); err != nil {
				log.Fatalf("Migration failed: %v", err)
			}
		}
	}

	stats, err := placsp.NewPipeline(cfg, pool).Run(ctx)
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}

	log.Printf("Sync completed: %d months scanned, %d zips fetched, %d raw entries, %d unique tenders (%d active), %d errors",
		stats.MonthsScanned, stats.ZipsFetched, stats.RawEntries, stats.UniqueTenders, stats.ActiveTenders, stats.Errors)
}
