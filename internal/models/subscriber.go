package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber is one alert subscription: an email address plus the
// filters applied against each fresh snapshot by the alerts job. Empty
// filter lists impose no constraint, matching the search gates.
type Subscriber struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Keywords   []string  `json:"keywords"`
	Provincias []string  `json:"provincias"`
	Tipos      []string  `json:"tipos"`
	ImporteMin float64   `json:"importeMin"`
	CreatedAt  time.Time `json:"createdAt"`
}
