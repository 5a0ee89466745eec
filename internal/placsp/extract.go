package placsp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/licitapp/licitapp/internal/models"
)

// The Atom summary is an HTML blob of labeled fields separated by
// breaks. It is decoded to text first (tags stripped, entities
// resolved, breaks kept as newlines) so each value runs to the end of
// its line.
var (
	reIdentificador = regexp.MustCompile(`(?i)Identificador:\s*([^\n]+)`)
	reOrgano        = regexp.MustCompile(`(?i)Órgano de Contratación:\s*([^\n]+)`)
	reEstado        = regexp.MustCompile(`(?i)Estado:\s*([^\n]+)`)
	reImporte       = regexp.MustCompile(`(?i)Importe(?:\s+de\s+Licitación)?:\s*([0-9.,]+)`)
	reCPV           = regexp.MustCompile(`(?i)CPV:\s*([0-9\- ]+)`)
	reTipo          = regexp.MustCompile(`(?i)Tipo de Contrato:\s*([^\n]+)`)
	reCCAA          = regexp.MustCompile(`(?i)CCAA:\s*([^\n]+)`)
	reProvincia     = regexp.MustCompile(`(?i)Provincia:\s*([^\n]+)`)
	rePublicacion   = regexp.MustCompile(`(?i)Fecha de Publicación:\s*([0-9/\-]+)`)
	reLimite        = regexp.MustCompile(`(?i)Fecha Límite de Presentación:\s*([0-9/\-: ]+)`)
)

var reBreak = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>`)

// ParseEntry turns one Atom entry into a tender record. The id falls
// back to the listing URL, then the title, so a record is only dropped
// when all three are missing.
func ParseEntry(entry atomEntry) models.Tender {
	summary := summaryText(entry.Summary)
	enlace := entry.link()
	titulo := clean(summaryText(entry.Title))

	field := func(re *regexp.Regexp) string {
		m := re.FindStringSubmatch(summary)
		if m == nil {
			return ""
		}
		return clean(m[1])
	}

	id := field(reIdentificador)
	if id == "" {
		id = enlace
	}
	if id == "" {
		id = titulo
	}

	return models.Tender{
		ID:               id,
		Titulo:           titulo,
		Organo:           field(reOrgano),
		Estado:           field(reEstado),
		Importe:          parseImporte(field(reImporte)),
		CPV:              field(reCPV),
		Tipo:             field(reTipo),
		CCAA:             field(reCCAA),
		Provincia:        field(reProvincia),
		FechaPublicacion: field(rePublicacion),
		FechaLimite:      field(reLimite),
		Enlace:           enlace,
		Fuente:           "PLACSP",
	}
}

// summaryText reduces the summary HTML to plain text. Break and
// block-closing tags become newlines first, keeping one field per
// line; goquery then strips the remaining markup and resolves
// entities.
func summaryText(s string) string {
	if s == "" {
		return ""
	}
	s = reBreak.ReplaceAllString(s, "\n")
	if !strings.Contains(s, "<") && !strings.Contains(s, "&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

// clean collapses runs of whitespace and trims.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// parseImporte normalizes a Spanish-formatted amount ("1.234.567,89").
// Thousand dots are stripped and the decimal comma becomes a point.
// Anything that still fails to parse is treated as absent.
func parseImporte(raw string) *float64 {
	if raw == "" {
		return nil
	}
	clean := strings.ReplaceAll(raw, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil
	}
	return &v
}
