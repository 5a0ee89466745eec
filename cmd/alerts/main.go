package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"

	"github.com/licitapp/licitapp/internal/alerts"
	"github.com/licitapp/licitapp/internal/catalog"
	"github.com/licitapp/licitapp/internal/db"
	"github.com/licitapp/licitapp/internal/placsp"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "path to the tender snapshot (defaults to <output_dir>/tenders-active.json)")
	dryRun := flag.Bool("dry-run", false, "match subscribers but send nothing")
	flag.Parse()

	cfg, err := placsp.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load sync config: %v", err)
	}
	path := *snapshotPath
	if path == "" {
		path = filepath.Join(cfg.OutputDir, "tenders-active.json")
	}

	snap, err := catalog.LoadFile(path)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	subscribers, err := db.NewStore(pool).ListSubscribers(ctx)
	if err != nil {
		log.Fatalf("Failed to list subscribers: %v", err)
	}
	if len(subscribers) == 0 {
		log.Print("No subscribers, nothing to send")
		return
	}

	if *dryRun {
		for _, sub := range subscribers {
			matched := alerts.Match(sub, snap.Tenders)
			log.Printf("%s: %d matching tenders", sub.Email, len(matched))
		}
		return
	}

	mailer := alerts.NewSMTPMailerFromEnv()
	if mailer == nil {
		log.Fatal("SMTP is not configured (set SMTP_HOST, SMTP_USER and SMTP_PASS)")
	}

	sent, failed := alerts.Run(mailer, subscribers, snap.Tenders)
	log.Printf("Alerts done: %d sent, %d failed, %d subscribers", sent, failed, len(subscribers))
}
