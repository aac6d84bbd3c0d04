// Package matching turns free-text utterances into ranked catalog candidates.
// It is deliberately free of I/O: everything here is deterministic so the
// assistant behaves the same whether or not the generation service is healthy.
package matching

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"construbot_backend/internal/catalog/domain"
)

// stopWords are the Spanish articles, prepositions and conjunctions dropped
// during normalization.
var stopWords = map[string]struct{}{
	"de": {}, "del": {}, "la": {}, "el": {}, "los": {}, "las": {},
	"un": {}, "una": {}, "unos": {}, "unas": {}, "con": {}, "para": {},
	"en": {}, "y": {}, "o": {}, "a": {},
}

// stripDiacritics decomposes and removes combining marks (NFD, drop Mn).
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var disallowedChars = regexp.MustCompile(`[^a-z0-9\s.#\-]`)
var whitespace = regexp.MustCompile(`\s+`)

// Normalize canonicalizes text for comparison: lower-case, diacritics
// stripped, symbols outside [a-z0-9 .#-] replaced with spaces, stop words
// dropped, single-space joined. Idempotent.
func Normalize(s string) string {
	lowered := strings.ToLower(s)
	stripped, _, err := transform.String(stripDiacritics, lowered)
	if err != nil {
		stripped = lowered
	}
	cleaned := disallowedChars.ReplaceAllString(stripped, " ")

	words := whitespace.Split(cleaned, -1)
	kept := words[:0]
	for _, w := range words {
		if w == "" {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Tokenize normalizes and splits on whitespace.
func Tokenize(s string) []string {
	normalized := Normalize(s)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// Singularize strips a trailing "es", else a trailing "s". A heuristic, not
// grammatically exhaustive: "tubos" -> "tubo" but also "mes" -> "m".
func Singularize(w string) string {
	if strings.HasSuffix(w, "es") {
		return w[:len(w)-2]
	}
	if strings.HasSuffix(w, "s") {
		return w[:len(w)-1]
	}
	return w
}

// QueryTokens tokenizes, singularizes and de-duplicates, keeping first-seen
// order.
func QueryTokens(q string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tok := range Tokenize(q) {
		tok = Singularize(tok)
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// Catalog abbreviation expansions applied to product text before matching.
var (
	abbrevCua     = regexp.MustCompile(`(?i)\bcua\b`)
	abbrevRectang = regexp.MustCompile(`(?i)\brectang\b`)
	abbrevNeg     = regexp.MustCompile(`(?i)\bneg\b`)
	abbrevGalv    = regexp.MustCompile(`(?i)\bgalv\b`)
	abbrevMts     = regexp.MustCompile(`(?i)\bmts\b`)
	decimalMeters = regexp.MustCompile(`(\d+\.\d+)\s*m`)
)

// ProductText builds a product's searchable text: every descriptive field
// concatenated, finish-code abbreviations expanded and decimal meter lengths
// rounded to the nearest integer so "teja 6m" can match a 6.14 m entry.
func ProductText(p domain.Product) string {
	parts := make([]string, 0, 6)
	for _, field := range []string{p.Name, p.Category, p.Description, p.Size, p.Brand} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	if p.Price > 0 {
		parts = append(parts, strconv.FormatFloat(p.Price, 'f', -1, 64))
	}
	text := strings.Join(parts, " ")

	text = abbrevCua.ReplaceAllString(text, "cuadrado")
	text = abbrevRectang.ReplaceAllString(text, "rectangular")
	text = abbrevNeg.ReplaceAllString(text, "negro")
	text = abbrevGalv.ReplaceAllString(text, "galvanizado")
	text = abbrevMts.ReplaceAllString(text, "m")
	text = decimalMeters.ReplaceAllStringFunc(text, func(match string) string {
		value, err := strconv.ParseFloat(decimalMeters.FindStringSubmatch(match)[1], 64)
		if err != nil {
			return match
		}
		return strconv.Itoa(int(math.Round(value))) + "m"
	})

	return Normalize(text)
}
