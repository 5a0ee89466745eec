package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/licitapp/licitapp/internal/models"
)

// Snapshot is one immutable load of the tender record set. Callers
// hold the current snapshot and swap it wholesale on reload; the
// engine never mutates it. A failed load yields no snapshot at all,
// so a stale or partial set is never served.
type Snapshot struct {
	Tenders  []models.Tender
	Source   string
	LoadedAt time.Time
}

// LoadFile reads a snapshot from a JSON array file, the format the
// sync job writes as tenders-active.json.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return decode(data, path)
}

// LoadURL fetches a snapshot over HTTP. The request is sent uncached
// so a redeployed snapshot file is picked up immediately.
func LoadURL(ctx context.Context, client *http.Client, url string) (*Snapshot, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code fetching snapshot: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot body: %w", err)
	}
	return decode(data, url)
}

func decode(data []byte, source string) (*Snapshot, error) {
	var tenders []models.Tender
	if err := json.Unmarshal(data, &tenders); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", source, err)
	}
	return &Snapshot{
		Tenders:  tenders,
		Source:   source,
		LoadedAt: time.Now(),
	}, nil
}
