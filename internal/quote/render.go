package quote

import (
	"fmt"
	"strings"

	"construbot_backend/internal/catalog/domain"
)

// ImageResolver maps a product name to an image URL, or "" when none exists.
// Image lookup is optional enrichment and must never fail a render.
type ImageResolver func(productName string) string

// Markdown renders the proforma as a pipe-delimited table with a header row
// and an alignment row, plus the computed total. Each row may be decorated
// with a small product image when the resolver finds one.
func Markdown(lines []Line, imageFor ImageResolver) (table string, total float64) {
	var rows []string
	for _, l := range lines {
		sub := l.Subtotal()
		total += sub

		nameCell := l.ProductName
		if imageFor != nil {
			if img := imageFor(l.ProductName); img != "" {
				nameCell = fmt.Sprintf(`<img src="%s" alt="" style="height:24px;width:auto;vertical-align:middle;margin-right:6px;"> %s`, img, l.ProductName)
			}
		}
		rows = append(rows, fmt.Sprintf("| %s | %d | $%.2f | $%.2f |", nameCell, l.Quantity, l.UnitPrice, sub))
	}

	header := "| Nombre | Cantidad | Precio unitario | Subtotal |\n| --- | ---: | ---: | ---: |"
	return header + "\n" + strings.Join(rows, "\n"), total
}

// ProductsMarkdown renders a matched-product list as a two-column table.
func ProductsMarkdown(products []domain.Product) string {
	var b strings.Builder
	b.WriteString("| Producto | Precio |\n| --- | ---: |")
	for _, p := range products {
		fmt.Fprintf(&b, "\n| %s | $%.2f |", p.Name, p.Price)
	}
	return b.String()
}
