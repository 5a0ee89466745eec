// Package placsp downloads the PLACSP contracting-profile syndication
// (ZIP archives of Atom feeds), extracts tender records from the feed
// entries and writes the snapshot files the catalog consumes.
package placsp

import (
	"embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/placsp.yaml
var configYAML embed.FS

// FetchConfig tunes the HTTP fetcher used for ZIP downloads.
type FetchConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"` // Default: 120
	MaxRetries     int `yaml:"max_retries,omitempty"`     // Default: 3
}

// Config describes the syndication source. It ships embedded and can
// be overridden by a file plus a couple of environment knobs the batch
// job honors (LICITAPP_START_YEAR, LICITAPP_ACTIVE_ONLY,
// LICITAPP_DATA_DIR).
type Config struct {
	Name        string      `yaml:"name"`
	BaseURL     string      `yaml:"base_url"`
	ZipPatterns []string    `yaml:"zip_patterns"`
	StartYear   int         `yaml:"start_year"`
	ActiveOnly  bool        `yaml:"active_only"`
	OutputDir   string      `yaml:"output_dir"`
	UserAgent   string      `yaml:"user_agent"`
	Fetch       FetchConfig `yaml:"fetch,omitempty"`
}

type configFile struct {
	Source Config `yaml:"source"`
}

// LoadConfig reads the embedded placsp.yaml, or the file at path when
// given, then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := configYAML.ReadFile("config/placsp.yaml")
	if path != "" {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync config: %w", err)
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse sync config: %w", err)
	}
	cfg := cf.Source

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("sync config is missing base_url")
	}
	if len(cfg.ZipPatterns) == 0 {
		return nil, fmt.Errorf("sync config has no zip_patterns")
	}
	if cfg.StartYear == 0 {
		cfg.StartYear = 2012
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data"
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 120
	}
	if cfg.Fetch.MaxRetries == 0 {
		cfg.Fetch.MaxRetries = 3
	}

	if raw := os.Getenv("LICITAPP_START_YEAR"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil && year > 2000 {
			cfg.StartYear = year
		}
	}
	if raw := os.Getenv("LICITAPP_ACTIVE_ONLY"); raw != "" {
		cfg.ActiveOnly = strings.EqualFold(raw, "true")
	}
	if dir := os.Getenv("LICITAPP_DATA_DIR"); dir != "" {
		cfg.OutputDir = dir
	}

	return &cfg, nil
}
