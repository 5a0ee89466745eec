// Package catalog implements the in-memory query engine over a loaded
// tender snapshot: facet extraction, criteria filtering and date-based
// ordering. Every function is pure over its inputs; the caller owns the
// snapshot and simply recomputes on change.
package catalog

import (
	"sort"

	"github.com/licitapp/licitapp/internal/models"
)

// Regions derives the filterable region facet: the distinct resolved
// locations (provincia else ccaa) across the record set, ascending.
// Tenders with no location contribute nothing. The result must be
// recomputed whenever the snapshot changes; it is never cached.
func Regions(records []models.Tender) []string {
	seen := make(map[string]struct{}, len(records))
	var regions []string
	for _, t := range records {
		loc := t.Location()
		if loc == "" {
			continue
		}
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}
		regions = append(regions, loc)
	}
	sort.Strings(regions)
	return regions
}
