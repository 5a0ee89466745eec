package placsp

import (
	"strings"
	"time"

	"github.com/licitapp/licitapp/internal/models"
)

// IsActive reports whether a tender still accepts bids as of now.
// Cancelled and suspended tenders are inactive regardless of dates; a
// parseable deadline strictly before today closes the tender, while a
// missing or unparseable deadline leaves it open.
func IsActive(t models.Tender, now time.Time) bool {
	estado := strings.ToLower(t.Estado)
	if strings.Contains(estado, "anulada") || strings.Contains(estado, "suspend") {
		return false
	}

	deadline := models.ParseDate(t.FechaLimite)
	if deadline.IsZero() {
		return true
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	deadlineDay := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, now.Location())
	return !deadlineDay.Before(today)
}
