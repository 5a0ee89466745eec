// Package alerts matches fresh snapshots against stored subscriptions
// and mails each subscriber an HTML digest of the tenders that fit
// their filters.
package alerts

import (
	"strings"

	"github.com/licitapp/licitapp/internal/models"
)

// Match filters tenders through a subscriber's criteria. The gates
// mirror the catalog search semantics: lower-cased substring matching,
// provincia-else-ccaa resolution, absent importe counting as zero. A
// list gate passes when any of its values matches; empty lists impose
// no constraint. Snapshot order is preserved.
func Match(sub models.Subscriber, tenders []models.Tender) []models.Tender {
	keywords := lowerNonEmpty(sub.Keywords)
	provincias := lowerNonEmpty(sub.Provincias)
	tipos := lowerNonEmpty(sub.Tipos)

	var matched []models.Tender
	for _, t := range tenders {
		if sub.ImporteMin > 0 && t.Amount() < sub.ImporteMin {
			continue
		}
		if len(provincias) > 0 && !anySubstring(strings.ToLower(t.Location()), provincias) {
			continue
		}
		if len(tipos) > 0 && !anySubstring(strings.ToLower(t.Tipo), tipos) {
			continue
		}
		if len(keywords) > 0 {
			haystack := strings.ToLower(t.Titulo + " " + t.Organo + " " + t.CPV)
			if !anySubstring(haystack, keywords) {
				continue
			}
		}
		matched = append(matched, t)
	}
	return matched
}

func lowerNonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, strings.ToLower(v))
	}
	return out
}

func anySubstring(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
