// Package quote implements the proforma state machine: the per-visitor line
// list and the operations that mutate it. All functions return new slices and
// never mutate their input, so a single logical transition is one atomic
// replacement on the session.
//
// Prices supplied by anything outside the catalog are advisory only: every
// path that commits lines resolves the unit price through the catalog, and a
// line whose product no longer resolves is dropped, never kept with a stale
// or guessed price.
package quote

import "math"

// Line is one proforma row. UnitPrice always equals the catalog price for
// ProductName as of the line's last reconciliation.
type Line struct {
	ProductName string  `json:"nombre"`
	Quantity    int     `json:"cantidad"`
	UnitPrice   float64 `json:"precio"`
}

// Subtotal is the line's extended price.
func (l Line) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// PriceLookup resolves a product name to its current catalog price.
// The boolean is false when the name no longer exists in the catalog.
type PriceLookup func(productName string) (float64, bool)

// Add merges quantity into an existing line for the product or appends a new
// one at the given catalog price. The same product never occupies two rows.
func Add(lines []Line, productName string, quantity int, unitPrice float64) []Line {
	next := make([]Line, 0, len(lines)+1)
	merged := false
	for _, l := range lines {
		if l.ProductName == productName {
			l.Quantity += quantity
			l.UnitPrice = unitPrice
			merged = true
		}
		next = append(next, l)
	}
	if !merged {
		next = append(next, Line{ProductName: productName, Quantity: quantity, UnitPrice: unitPrice})
	}
	return next
}

// Remove decrements the product's quantity, dropping the line once it reaches
// zero or below. A nil quantity removes the line entirely.
func Remove(lines []Line, productName string, quantity *int) []Line {
	next := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ProductName == productName {
			if quantity == nil {
				continue
			}
			l.Quantity -= *quantity
			if l.Quantity <= 0 {
				continue
			}
		}
		next = append(next, l)
	}
	return next
}

// SetQuantity sets the quantity on an existing line. It never creates a line;
// the boolean reports whether the product was found.
func SetQuantity(lines []Line, productName string, quantity int) ([]Line, bool) {
	next := make([]Line, 0, len(lines))
	found := false
	for _, l := range lines {
		if l.ProductName == productName {
			found = true
			l.Quantity = quantity
			if l.Quantity <= 0 {
				continue
			}
		}
		next = append(next, l)
	}
	return next, found
}

// Clear empties the proforma.
func Clear(_ []Line) []Line {
	return nil
}

// Total is the sum of all line subtotals, rounded to cents so accumulated
// float drift never shows up in a rendered amount.
func Total(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return RoundMoney(total)
}

// Reconcile maps an externally proposed replacement line list through the
// catalog: lines whose product still resolves survive with the unit price
// rewritten to the catalog value; everything else is discarded. This is the
// mandatory gate between any generation-proposed proforma and the session.
func Reconcile(proposed []Line, priceFor PriceLookup) []Line {
	var next []Line
	for _, l := range proposed {
		officialPrice, ok := priceFor(l.ProductName)
		if !ok {
			continue
		}
		if l.Quantity <= 0 {
			continue
		}
		l.UnitPrice = officialPrice
		next = append(next, l)
	}
	return next
}

// RoundMoney rounds to two decimals for display math.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
