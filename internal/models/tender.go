package models

import "time"

// Tender is one public procurement listing as produced by the PLACSP
// sync job. Field names mirror the snapshot JSON; every field except ID
// may be empty. A loaded tender is read-only: the catalog only selects,
// derives and reorders.
type Tender struct {
	ID               string   `json:"id"`
	Titulo           string   `json:"titulo"`
	Organo           string   `json:"organo"`
	Estado           string   `json:"estado"`
	Importe          *float64 `json:"importe"`
	CPV              string   `json:"cpv"`
	Tipo             string   `json:"tipo"`
	CCAA             string   `json:"ccaa"`
	Provincia        string   `json:"provincia"`
	FechaPublicacion string   `json:"fechaPublicacion"`
	FechaLimite      string   `json:"fechaLimite"`
	Enlace           string   `json:"enlace"`
	Fuente           string   `json:"fuente"`
}

// Location resolves the tender's region label: provincia when present,
// else ccaa, else "". Every consumer of a region value (facets, search,
// alerts, rendering) must go through this method so the fallback is
// applied identically everywhere.
func (t Tender) Location() string {
	if t.Provincia != "" {
		return t.Provincia
	}
	return t.CCAA
}

// Amount returns the monetary amount, with an absent importe counting
// as zero.
func (t Tender) Amount() float64 {
	if t.Importe == nil {
		return 0
	}
	return *t.Importe
}

// EffectiveTime is the date used to order search results: fechaLimite
// when it parses, else fechaPublicacion, else the zero time. Tenders
// with no usable date therefore sort first in ascending order.
func (t Tender) EffectiveTime() time.Time {
	if ts := ParseDate(t.FechaLimite); !ts.IsZero() {
		return ts
	}
	return ParseDate(t.FechaPublicacion)
}

// PublicationTime parses fechaPublicacion only, with no fallback to the
// deadline. The zero time stands in for absent or unparseable dates, so
// such tenders sort last in the descending "latest" view.
func (t Tender) PublicationTime() time.Time {
	return ParseDate(t.FechaPublicacion)
}
