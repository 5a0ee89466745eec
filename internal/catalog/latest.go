package catalog

import (
	"sort"

	"github.com/licitapp/licitapp/internal/models"
)

// The latest view shows at most this many tenders.
const latestLimit = 50

// Latest orders the full, unfiltered record set descending by
// publication date and truncates to the newest 50. There is no
// fallback to fechaLimite here: tenders without a parseable
// fechaPublicacion sort last. Ties keep their snapshot order.
func Latest(records []models.Tender) []models.Tender {
	out := make([]models.Tender, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublicationTime().After(out[j].PublicationTime())
	})
	if len(out) > latestLimit {
		out = out[:latestLimit]
	}
	return out
}
