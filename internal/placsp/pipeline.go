package placsp

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/licitapp/licitapp/internal/models"
)

// Stats summarizes one sync run.
type Stats struct {
	MonthsScanned int `json:"months_scanned"`
	ZipsFetched   int `json:"zips_fetched"`
	RawEntries    int `json:"raw_entries"`
	UniqueTenders int `json:"unique_tenders"`
	ActiveTenders int `json:"active_tenders"`
	Errors        int `json:"errors"`
}

// Pipeline runs a full PLACSP sync: discover the monthly archives,
// extract and dedupe the tenders, write the snapshot files. The pool
// is optional; without it the run is simply not recorded.
type Pipeline struct {
	cfg        *Config
	fetcher    *Fetcher
	discoverer *Discoverer
	pool       *pgxpool.Pool
}

func NewPipeline(cfg *Config, pool *pgxpool.Pool) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		fetcher:    NewFetcher(cfg.Fetch, cfg.UserAgent),
		discoverer: NewDiscoverer(cfg),
		pool:       pool,
	}
}

// Run executes one sync from the configured start year up to the
// current month. Individual month failures are counted, logged and
// skipped, matching the batch-job behavior where a missing archive is
// routine.
func (p *Pipeline) Run(ctx context.Context) (Stats, error) {
	var runID string
	if p.pool != nil {
		err := p.pool.QueryRow(ctx,
			"INSERT INTO sync_runs (source, status) VALUES ($1, 'running') RETURNING run_id",
			"placsp").Scan(&runID)
		if err != nil {
			log.Printf("[Warn] Failed to create sync run: %v", err)
		}
	}

	start := time.Now()
	stats := Stats{}

	defer func() {
		if runID == "" {
			return
		}
		status := "completed"
		if stats.UniqueTenders == 0 && stats.Errors > 0 {
			status = "failed"
		}
		_, err := p.pool.Exec(ctx,
			`UPDATE sync_runs SET
				status = $1,
				zips_fetched = $2,
				raw_entries = $3,
				unique_tenders = $4,
				active_tenders = $5,
				errors = $6,
				completed_at = NOW(),
				details = $7
			WHERE run_id = $8`,
			status, stats.ZipsFetched, stats.RawEntries, stats.UniqueTenders,
			stats.ActiveTenders, stats.Errors,
			fmt.Sprintf(`{"duration_ms": %d}`, time.Since(start).Milliseconds()),
			runID,
		)
		if err != nil {
			log.Printf("Failed to update sync run %s: %v", runID, err)
		}
	}()

	now := time.Now()

	available, err := p.discoverer.Discover(ctx)
	if err != nil {
		// The index listing is an optimization; pattern probing still
		// finds the archives when it is unavailable.
		log.Printf("[Warn] Syndication index discovery failed: %v", err)
		available = nil
	}

	byID := make(map[string]int)
	var tenders []models.Tender

	log.Printf("Syncing PLACSP archives from %d through %s", p.cfg.StartYear, now.Format("2006-01"))
	for _, ym := range Months(p.cfg.StartYear, now) {
		stats.MonthsScanned++

		zipURL := p.zipURL(ctx, ym, available)
		if zipURL == "" {
			continue
		}

		if err := ctx.Err(); err != nil {
			return stats, err
		}

		data, err := p.fetcher.Get(ctx, zipURL)
		if err != nil {
			log.Printf("Failed to download %s: %v", zipURL, err)
			stats.Errors++
			continue
		}
		stats.ZipsFetched++

		entries, err := EntriesFromZip(data)
		if err != nil {
			log.Printf("Failed to extract %s: %v", zipURL, err)
			stats.Errors++
			continue
		}

		for _, entry := range entries {
			t := ParseEntry(entry)
			if t.ID == "" {
				continue
			}
			stats.RawEntries++
			// Dedupe by id, newest archive wins, first-seen order kept.
			if idx, seen := byID[t.ID]; seen {
				tenders[idx] = t
				continue
			}
			byID[t.ID] = len(tenders)
			tenders = append(tenders, t)
		}
	}
	stats.UniqueTenders = len(tenders)

	ndjsonPath := filepath.Join(p.cfg.OutputDir, "tenders.ndjson")
	if err := WriteNDJSON(ndjsonPath, tenders); err != nil {
		stats.Errors++
		return stats, err
	}
	log.Printf("Wrote %d tenders to %s", len(tenders), ndjsonPath)

	if p.cfg.ActiveOnly {
		active := make([]models.Tender, 0, len(tenders))
		for _, t := range tenders {
			if IsActive(t, now) {
				active = append(active, t)
			}
		}
		stats.ActiveTenders = len(active)

		activePath := filepath.Join(p.cfg.OutputDir, "tenders-active.json")
		if err := WriteJSON(activePath, active); err != nil {
			stats.Errors++
			return stats, err
		}
		log.Printf("Wrote %d active tenders to %s", len(active), activePath)
	}

	return stats, nil
}

// zipURL resolves the archive URL for one AAAAMM month, preferring the
// scraped index listing and falling back to HEAD-probing the known
// filename patterns.
func (p *Pipeline) zipURL(ctx context.Context, ym string, available map[string]string) string {
	for _, pattern := range p.cfg.ZipPatterns {
		name := formatPattern(pattern, ym)
		if href, ok := available[name]; ok {
			return href
		}
	}

	if len(available) > 0 {
		// Index was scraped and does not list this month at all.
		return ""
	}

	for _, pattern := range p.cfg.ZipPatterns {
		candidate, err := url.JoinPath(p.cfg.BaseURL, formatPattern(pattern, ym))
		if err != nil {
			continue
		}
		if p.fetcher.Exists(ctx, candidate) {
			return candidate
		}
	}
	return ""
}

func formatPattern(pattern, ym string) string {
	return strings.ReplaceAll(pattern, "{ym}", ym)
}
