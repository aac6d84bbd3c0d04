package matching

import (
	"regexp"
	"strconv"
	"strings"
)

// DimPair is a parsed "NxM" dimension mention, in catalog units.
type DimPair struct {
	A int
	B int
}

// String renders the pair the way catalog entries spell it.
func (d DimPair) String() string {
	return strconv.Itoa(d.A) + "x" + strconv.Itoa(d.B)
}

// Reversed swaps the pair, to tolerate catalogs authored in the other order.
func (d DimPair) Reversed() DimPair {
	return DimPair{A: d.B, B: d.A}
}

// OrderInfo carries the auxiliary attributes parsed from a raw utterance.
// Each field is independent of the token-overlap score and acts as a gate or
// boost during matching.
type OrderInfo struct {
	Dims        *DimPair
	ThicknessMM string
	Quantity    *int
}

var (
	dimPattern   = regexp.MustCompile(`(\d{2,4})\s*[x×]\s*(\d{2,4})`)
	thickPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*mm\b`)
	trailingZero = regexp.MustCompile(`\.0+$`)

	qtyUnitPattern = regexp.MustCompile(`\b(\d{1,6})\s*(?:unidades|unds?|u|pzas?|piezas|pallets?|cajas?)\b`)
	qtyVerbPattern = regexp.MustCompile(`\b(?:agrega|añade|añadir|pon|poner|quiero|necesito|comprar|deme|dame|sumar)\b[^\n\r\d]{0,20}?(\d{1,6})`)
	qtyNounPattern = regexp.MustCompile(`\b(\d{1,6})\s*(?:tubos|tejas|tornillos|pernos|planchas|electrodos|autoperforantes|capuchones)\b`)
	// A number glued to a measurement is a dimension, not a quantity.
	measureSuffix = regexp.MustCompile(`^\s*(?:mm|m\b|x|×)`)
)

// ParseOrderInfo extracts dimensions, thickness and an explicit quantity from
// the raw message. Quantity is only reported when explicit; there is no
// "last number wins" fallback.
func ParseOrderInfo(msg string) OrderInfo {
	text := strings.ToLower(msg)
	info := OrderInfo{
		Dims:        Dimensions(text),
		ThicknessMM: ThicknessMM(text),
		Quantity:    Quantity(text),
	}
	return info
}

// Dimensions parses a dimension pair like "100x100" or "100 × 50".
func Dimensions(text string) *DimPair {
	m := dimPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return nil
	}
	a, _ := strconv.Atoi(m[1])
	b, _ := strconv.Atoi(m[2])
	return &DimPair{A: a, B: b}
}

// ThicknessMM parses a thickness like "2mm" or "1.5 mm", with trailing zero
// decimals trimmed ("2.0mm" -> "2").
func ThicknessMM(text string) string {
	m := thickPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return ""
	}
	return trailingZero.ReplaceAllString(m[1], "")
}

// Quantity extracts an explicit quantity. Rules in priority order:
//  1. number followed by a quantity unit word ("12 unidades", "3 cajas")
//  2. action verb followed by a number that is not a measurement
//  3. number followed by a known plural product noun ("5 tubos")
//
// Within a rule, the last occurrence wins.
func Quantity(textRaw string) *int {
	text := strings.ToLower(textRaw)

	if qty := lastSubmatchInt(qtyUnitPattern, text); qty != nil {
		return qty
	}

	// Rule 2 needs to reject numbers glued to mm/m/x; RE2 has no lookahead,
	// so check the tail after each candidate.
	matches := qtyVerbPattern.FindAllStringSubmatchIndex(text, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		loc := matches[i]
		numStart, numEnd := loc[2], loc[3]
		if measureSuffix.MatchString(text[numEnd:]) {
			continue
		}
		if qty, err := strconv.Atoi(text[numStart:numEnd]); err == nil {
			return &qty
		}
	}

	return lastSubmatchInt(qtyNounPattern, text)
}

func lastSubmatchInt(re *regexp.Regexp, text string) *int {
	matches := re.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	qty, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return nil
	}
	return &qty
}

// TubeShape classifies the tube family.
type TubeShape string

const (
	ShapeSquare      TubeShape = "cuadrado"
	ShapeRectangular TubeShape = "rectangular"
	ShapeRound       TubeShape = "redondo"
)

var (
	shapeSquarePattern = regexp.MustCompile(`\bcuadrad|\bcua\b`)
	shapeRectPattern   = regexp.MustCompile(`\brectang`)
	shapeRoundPattern  = regexp.MustCompile(`\bredond?o?\b|\bredon\b`)
)

// ShapeFromMessage detects an explicitly requested tube shape.
func ShapeFromMessage(msg string) TubeShape {
	t := Normalize(msg)
	switch {
	case shapeSquarePattern.MatchString(t):
		return ShapeSquare
	case shapeRectPattern.MatchString(t):
		return ShapeRectangular
	case shapeRoundPattern.MatchString(t):
		return ShapeRound
	}
	return ""
}

// ShapeFromDims infers the shape from the dimension pair: equal sides mean
// square, unequal mean rectangular.
func ShapeFromDims(dims *DimPair) TubeShape {
	if dims == nil {
		return ""
	}
	if dims.A == dims.B {
		return ShapeSquare
	}
	return ShapeRectangular
}

var nameThickness = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)mm`)

// ThicknessFromName pulls the thickness value out of a catalog name.
func ThicknessFromName(name string) string {
	m := nameThickness.FindStringSubmatch(name)
	if m == nil {
		return ""
	}
	return m[1]
}

// QualityPreference detects a quality-grade keyword: "primera" is the premium
// tier, "segunda" and "especial" the economy tiers.
func QualityPreference(msg string) string {
	t := Normalize(msg)
	for _, grade := range []string{"especial", "segunda", "primera"} {
		if regexp.MustCompile(`\b` + grade + `\b`).MatchString(t) {
			return grade
		}
	}
	return ""
}

// Intent predicates over the raw utterance.
var (
	viewPattern    = regexp.MustCompile(`(?i)(\bver (mi )?proforma\b|\bc(?:o|ó)mo va la cuenta\b|\bmi proforma\b)`)
	addPattern     = regexp.MustCompile(`(?i)(agrega|añade|añadir|sumar|pon|poner|quiero|comprar|deme|dame|necesito)`)
	removePattern  = regexp.MustCompile(`(?i)(quita|elimina|remueve|borra)`)
	updatePattern  = regexp.MustCompile(`(?i)(ajusta|cambia|actualiza|solo|deja)`)
	clearPattern   = regexp.MustCompile(`(?i)(empezar de nuevo|limpiar|vaciar)`)
	greetPattern   = regexp.MustCompile(`(?i)^(hola|buenos dias|buenos días|buenas tardes|buenas noches)$`)
	mentionPattern = regexp.MustCompile(`(?i)\btubos?\b`)
)

// WantsView reports a "show me my quote" request.
func WantsView(msg string) bool { return viewPattern.MatchString(msg) }

// WantsAdd reports an add-to-quote intent verb.
func WantsAdd(msg string) bool { return addPattern.MatchString(msg) }

// WantsRemove reports a remove-from-quote intent verb.
func WantsRemove(msg string) bool { return removePattern.MatchString(msg) }

// WantsUpdate reports a set-quantity intent verb.
func WantsUpdate(msg string) bool { return updatePattern.MatchString(msg) }

// WantsClear reports a start-over request.
func WantsClear(msg string) bool { return clearPattern.MatchString(msg) }

// IsGreeting reports a bare greeting with no other content.
func IsGreeting(msg string) bool { return greetPattern.MatchString(strings.TrimSpace(msg)) }

// MentionsTube reports an explicit tube mention.
func MentionsTube(msg string) bool { return mentionPattern.MatchString(msg) }
