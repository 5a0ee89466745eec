package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/licitapp/licitapp/internal/db"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, "SELECT run_id, source, status, zips_fetched, raw_entries, unique_tenders, active_tenders, errors, started_at, completed_at FROM sync_runs ORDER BY started_at DESC LIMIT 10")
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Status", "Zips", "Raw", "Unique", "Active", "Errors", "Duration", "Started At"})

	for rows.Next() {
		var runID, source, status string
		var zips, raw, unique, active, errs int
		var startedAt time.Time
		var completedAt *time.Time

		if err := rows.Scan(&runID, &source, &status, &zips, &raw, &unique, &active, &errs, &startedAt, &completedAt); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}

		duration := "Running..."
		if completedAt != nil {
			duration = completedAt.Sub(startedAt).Round(time.Second).String()
		}

		t.AppendRow(table.Row{source, status, zips, raw, unique, active, errs, duration, startedAt.Format("02/01 15:04:05")})
	}
	t.Render()
}
