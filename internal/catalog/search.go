package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/licitapp/licitapp/internal/models"
)

// Criteria are the three independent search gates. An empty value
// deactivates its gate; active gates combine conjunctively.
// MinImporte stays a string because it arrives verbatim from a form
// field: a non-empty value that does not parse as a number activates
// the gate and rejects every record.
type Criteria struct {
	Query      string `json:"query" query:"q"`
	Region     string `json:"region" query:"region"`
	MinImporte string `json:"minImporte" query:"min_importe"`
}

// Search filters records through the active gates, then orders the
// survivors ascending by effective date (fechaLimite else
// fechaPublicacion else none). The sort is stable, so equal dates keep
// their snapshot order. The input slice is never mutated.
func Search(records []models.Tender, c Criteria) []models.Tender {
	region := strings.ToLower(c.Region)
	query := strings.ToLower(c.Query)

	minActive := c.MinImporte != ""
	var minImporte float64
	minValid := false
	if minActive {
		if v, err := strconv.ParseFloat(strings.TrimSpace(c.MinImporte), 64); err == nil {
			minImporte = v
			minValid = true
		}
	}

	out := make([]models.Tender, 0, len(records))
	for _, t := range records {
		if region != "" && !strings.Contains(strings.ToLower(t.Location()), region) {
			continue
		}
		if minActive {
			if !minValid {
				// Unparseable minimum rejects everything.
				continue
			}
			if t.Amount() < minImporte {
				continue
			}
		}
		if query != "" && !matchesText(t, query) {
			continue
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveTime().Before(out[j].EffectiveTime())
	})
	return out
}

// matchesText reports whether the lower-cased query is a substring of
// titulo, organo or cpv. Absent fields are skipped, not matched as
// empty strings.
func matchesText(t models.Tender, query string) bool {
	for _, field := range []string{t.Titulo, t.Organo, t.CPV} {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
