package placsp

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// Months lists the AAAAMM keys from January of startYear through the
// month of now.
func Months(startYear int, now time.Time) []string {
	currentYear, currentMonth := now.Year(), int(now.Month())

	var months []string
	for year := startYear; year <= currentYear; year++ {
		for month := 1; month <= 12; month++ {
			if year == currentYear && month > currentMonth {
				break
			}
			months = append(months, fmt.Sprintf("%d%02d", year, month))
		}
	}
	return months
}

// Discoverer scrapes the syndication directory index for the ZIP files
// it actually links. Probing the historical filename patterns stays as
// a fallback for months the index does not list.
type Discoverer struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
}

func NewDiscoverer(cfg *Config) *Discoverer {
	timeout := time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Discoverer{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		timeout:   timeout,
	}
}

// Discover returns the ZIP URLs linked from the index, keyed by bare
// filename. An unreachable or linkless index is not an error; the
// caller falls back to pattern probing.
func (d *Discoverer) Discover(ctx context.Context) (map[string]string, error) {
	parsed, err := url.Parse(d.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := colly.NewCollector(
		colly.UserAgent(d.userAgent),
		colly.AllowedDomains(parsed.Host),
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(d.timeout)

	available := make(map[string]string)
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if !strings.HasSuffix(strings.ToLower(href), ".zip") {
			return
		}
		if abs := e.Request.AbsoluteURL(href); abs != "" {
			available[path.Base(href)] = abs
		}
	})

	var visitErr error
	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	if err := c.Visit(d.baseURL); err != nil {
		return nil, fmt.Errorf("failed to visit syndication index: %w", err)
	}
	c.Wait()

	if visitErr != nil {
		return nil, fmt.Errorf("failed to scrape syndication index: %w", visitErr)
	}
	return available, nil
}
