// Package render builds the printable proforma document.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/skip2/go-qrcode"

	"construbot_backend/internal/quote"
	"construbot_backend/platform/config"
	"construbot_backend/platform/phone"
)

const proformaTemplate = `<!DOCTYPE html><html lang="es"><head><meta charset="UTF-8"><title>Proforma {{.CompanyName}}</title><meta name="viewport" content="width=device-width, initial-scale=1"/><style>{{.Styles}}</style></head><body>
<header>
  <h1>Proforma - {{.CompanyName}}</h1>
  <div class="muted">Cliente: {{.ClientName}}</div>
  <div class="muted">Fecha: {{.Date}}</div>
  <div style="margin-top:.5em">
    <strong>Dirección:</strong> {{.Address}} ·
    <strong>Teléfono:</strong> <a href="{{.TelLink}}">{{.Phone}}</a> ·
    <strong>Web:</strong> <a href="{{.Website}}" target="_blank">{{.Website}}</a>
  </div>
  {{if .QRDataURI}}<div style="margin-top:.5em"><img src="{{.QRDataURI}}" alt="Llámanos" width="96" height="96"><div class="muted">Escanea para llamarnos</div></div>{{end}}
</header>

<table><thead><tr><th>Cantidad</th><th>Producto</th><th>P. Unitario</th><th>Subtotal</th></tr></thead><tbody>
{{range .Items}}<tr><td>{{.Quantity}}</td><td>{{.Name}}</td><td>{{.UnitPrice}}</td><td>{{.Subtotal}}</td></tr>
{{end}}</tbody><tfoot><tr><td colspan="3">Total</td><td>{{.Total}}</td></tr></tfoot></table>

<div style="margin-top:1em">
  <a href="/proforma?download=1">Descargar HTML</a> ·
  <a href="/proforma.pdf">Descargar PDF</a> ·
  <a href="{{.TelLink}}">Llamar ahora</a>
</div>

<footer>
  <div><strong>Sucursales:</strong></div>
  <ul>{{range .Branches}}<li>{{.}}</li>{{end}}</ul>
  <div class="muted">Gracias por su confianza.</div>
</footer>
</body></html>`

const styles = `body{font-family:system-ui,-apple-system,Segoe UI,Roboto,sans-serif;padding:2em;color:#222}header{margin-bottom:1em}h1{margin:0 0 .25em}small, .muted{color:#666}table{width:100%;border-collapse:collapse;margin-top:1em}th,td{border:1px solid #ddd;padding:8px;text-align:left}th{background-color:#f7f7f7}tfoot{font-weight:bold}footer{margin-top:2em;font-size:.95em;border-top:1px solid #eee;padding-top:1em}ul{margin:.25em 0 .5em 1.25em}`

var tmpl = template.Must(template.New("proforma").Parse(proformaTemplate))

type itemView struct {
	Quantity  int
	Name      string
	UnitPrice string
	Subtotal  string
}

type documentView struct {
	CompanyName string
	ClientName  string
	Date        string
	Address     string
	Phone       string
	TelLink     template.URL
	Website     string
	QRDataURI   template.URL
	Styles      template.CSS
	Items       []itemView
	Branches    []string
	Total       string
}

// Renderer produces the proforma HTML for a visitor's quote.
type Renderer struct {
	company   config.CompanyConfig
	telLink   string
	qrDataURI string
}

// New creates a renderer. The QR code for the call link is generated once;
// a QR failure only drops the image, never the document.
func New(company config.CompanyConfig) *Renderer {
	telLink := phone.TelLink(company.GetCompanyPhone())
	qr := ""
	if png, err := qrcode.Encode(telLink, qrcode.Medium, 192); err == nil {
		qr = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}
	return &Renderer{company: company, telLink: telLink, qrDataURI: qr}
}

// HTML renders the full proforma document for the given quote lines.
func (r *Renderer) HTML(clientName string, lines []quote.Line, now time.Time) ([]byte, error) {
	if clientName == "" {
		clientName = "N/A"
	}

	items := make([]itemView, 0, len(lines))
	for _, l := range lines {
		items = append(items, itemView{
			Quantity:  l.Quantity,
			Name:      l.ProductName,
			UnitPrice: fmt.Sprintf("$%.2f", l.UnitPrice),
			Subtotal:  fmt.Sprintf("$%.2f", l.Subtotal()),
		})
	}

	// tel: is outside html/template's allowed URL schemes, so TelLink has
	// to be marked safe explicitly.
	view := documentView{
		CompanyName: r.company.GetCompanyName(),
		ClientName:  clientName,
		Date:        now.Format("02/01/2006 15:04"),
		Address:     r.company.GetCompanyAddress(),
		Phone:       r.company.GetCompanyPhone(),
		TelLink:     template.URL(r.telLink),
		Website:     r.company.GetCompanyWebsite(),
		QRDataURI:   template.URL(r.qrDataURI),
		Styles:      template.CSS(styles),
		Items:       items,
		Branches:    r.company.GetCompanyBranches(),
		Total:       fmt.Sprintf("$%.2f", quote.Total(lines)),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render proforma: %w", err)
	}
	return buf.Bytes(), nil
}
