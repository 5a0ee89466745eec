package alerts

import (
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/licitapp/licitapp/internal/models"
)

// Digests cap out at this many tenders to keep emails manageable.
const maxDigestRows = 20

const digestSubject = "Nuevas licitaciones de tu interés – LicitApp"

// Feed text goes into an HTML email, so everything interpolated is
// stripped down to plain text first.
var textPolicy = bluemonday.StrictPolicy()

// BuildDigest renders the alert email body for a set of matched
// tenders. Absent deadlines show a dash; the link is only rendered
// when the tender has one.
func BuildDigest(tenders []models.Tender) (subject, htmlBody string) {
	if len(tenders) > maxDigestRows {
		tenders = tenders[:maxDigestRows]
	}

	var rows strings.Builder
	for _, t := range tenders {
		limite := textPolicy.Sanitize(t.FechaLimite)
		if limite == "" {
			limite = "-"
		}

		rows.WriteString("<li><strong>")
		rows.WriteString(textPolicy.Sanitize(t.Titulo))
		rows.WriteString("</strong> – ")
		rows.WriteString(textPolicy.Sanitize(t.Organo))
		rows.WriteString("<br/><em>Provincia:</em> ")
		rows.WriteString(textPolicy.Sanitize(t.Location()))
		rows.WriteString(" | <em>Límite:</em> ")
		rows.WriteString(limite)
		if t.Enlace != "" {
			fmt.Fprintf(&rows, ` | <a href="%s" target="_blank">Ver</a>`, textPolicy.Sanitize(t.Enlace))
		}
		rows.WriteString("</li>\n")
	}

	htmlBody = fmt.Sprintf(`<p>Hola,</p>
<p>A continuación encontrarás las licitaciones que coinciden con tus intereses:</p>
<ul>
%s</ul>
<p>Gracias por usar LicitApp.</p>
<p><em>No respondas a este mensaje. Para cancelar tu suscripción envía un correo indicando tu email.</em></p>
`, rows.String())

	return digestSubject, htmlBody
}
