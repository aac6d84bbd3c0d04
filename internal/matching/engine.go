package matching

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"construbot_backend/internal/catalog/domain"
)

// Weights are the scoring constants. The defaults are empirically chosen;
// only their relative ordering is load-bearing, so they stay configurable.
type Weights struct {
	Token      float64 // per expanded query token found in the product text
	TubeFamily float64 // product text mentions the tube family
	SquareHint float64 // product text mentions a square profile
	DimHit     float64 // requested dimension pair present
	DimMiss    float64 // requested dimension pair absent (penalty, negative)
	ThickHit   float64 // requested thickness present
	ThickMiss  float64 // requested thickness absent (penalty, negative)
	Premium    float64 // premium grade tiebreaker
}

// DefaultWeights returns the production scoring constants.
func DefaultWeights() Weights {
	return Weights{
		Token:      1,
		TubeFamily: 2,
		SquareHint: 1,
		DimHit:     6,
		DimMiss:    -4,
		ThickHit:   4,
		ThickMiss:  -2,
		Premium:    0.5,
	}
}

// Engine scores catalog products against expanded queries.
type Engine struct {
	weights Weights
}

// NewEngine creates an engine with the given weights.
func NewEngine(w Weights) *Engine {
	return &Engine{weights: w}
}

var (
	tubeFamilyPattern = regexp.MustCompile(`\btubo\b`)
	squareHintPattern = regexp.MustCompile(`\bcua\w*`)
	premiumPattern    = regexp.MustCompile(`\bprimera\b`)
)

// quantity/measure words that never identify a product on their own,
// in singularized form.
var unitWords = map[string]struct{}{
	"unidade": {}, "pieza": {}, "caja": {}, "pallet": {}, "metro": {},
}

// intent verbs in normalized form (diacritics already stripped).
var intentVerbs = map[string]struct{}{
	"agrega": {}, "anade": {}, "anadir": {}, "sumar": {}, "pon": {},
	"poner": {}, "quiero": {}, "comprar": {}, "deme": {}, "dame": {},
	"necesito": {},
}

// meaningfulTokens drops bare numbers, unit words and intent verbs. A
// quantity-only or intent-only utterance never stands in for a product
// reference.
func meaningfulTokens(tokens []string) []string {
	var out []string
	for _, tok := range tokens {
		if _, err := strconv.ParseFloat(tok, 64); err == nil {
			continue
		}
		if _, unit := unitWords[tok]; unit {
			continue
		}
		if _, verb := intentVerbs[tok]; verb {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// score computes one product's score for the pre-expanded query.
func (e *Engine) score(tokens []string, dims *DimPair, thicknessMM string, p domain.Product) float64 {
	hay := ProductText(p)

	var s float64
	for _, tok := range tokens {
		if strings.Contains(hay, tok) {
			s += e.weights.Token
		}
	}
	if tubeFamilyPattern.MatchString(hay) {
		s += e.weights.TubeFamily
	}
	if squareHintPattern.MatchString(hay) {
		s += e.weights.SquareHint
	}

	if dims != nil {
		if strings.Contains(hay, dims.String()) {
			s += e.weights.DimHit
		} else {
			s += e.weights.DimMiss
		}
	}
	if thicknessMM != "" {
		if strings.Contains(hay, thicknessMM+"mm") {
			s += e.weights.ThickHit
		} else {
			s += e.weights.ThickMiss
		}
	}

	// prefer primera over segunda when dims and thickness tie
	if premiumPattern.MatchString(hay) {
		s += e.weights.Premium
	}

	return s
}

// Match returns the best-scoring product, or nil when no product scores
// strictly positive — the caller must ask a clarifying question rather than
// guess. Ties break by catalog iteration order: first maximum wins.
func (e *Engine) Match(query string, products []domain.Product) *domain.Product {
	tokens := ExpandQuery(query)
	if len(meaningfulTokens(tokens)) == 0 {
		return nil
	}
	if len(products) == 0 {
		return nil
	}

	info := ParseOrderInfo(query)

	var best *domain.Product
	bestScore := 0.0
	for i := range products {
		s := e.score(tokens, info.Dims, info.ThicknessMM, products[i])
		if best == nil || s > bestScore {
			best = &products[i]
			bestScore = s
		}
	}
	if bestScore <= 0 {
		return nil
	}
	return best
}

// Rank returns every product scoring above zero, in non-increasing score
// order. With the catalog order held constant the ordering is deterministic:
// ties keep catalog order.
func (e *Engine) Rank(query string, products []domain.Product) []domain.Product {
	tokens := ExpandQuery(query)
	if len(meaningfulTokens(tokens)) == 0 {
		return nil
	}

	info := ParseOrderInfo(query)

	type scored struct {
		product domain.Product
		score   float64
	}
	var hits []scored
	for _, p := range products {
		if s := e.score(tokens, info.Dims, info.ThicknessMM, p); s > 0 {
			hits = append(hits, scored{product: p, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]domain.Product, len(hits))
	for i, h := range hits {
		out[i] = h.product
	}
	return out
}

// TubeDecision is the outcome of the tube-family specialization.
// When ThicknessOptions is non-empty the engine could not choose among
// multiple thicknesses and the caller must ask which one.
type TubeDecision struct {
	Product          *domain.Product
	ThicknessOptions []string
}

var (
	tubeSquareText = regexp.MustCompile(`\bcuadrad`)
	tubeRectText   = regexp.MustCompile(`\brectang`)
	tubeRoundText  = regexp.MustCompile(`\bredond`)
)

// FilterTubeCandidates narrows products to the tube family with the given
// shape and, when dims is non-nil, the exact dimension substring.
func FilterTubeCandidates(products []domain.Product, dims *DimPair, shape TubeShape) []domain.Product {
	var out []domain.Product
	for _, p := range products {
		h := ProductText(p)
		if !tubeFamilyPattern.MatchString(h) {
			continue
		}
		switch shape {
		case ShapeSquare:
			if !tubeSquareText.MatchString(h) {
				continue
			}
		case ShapeRectangular:
			if !tubeRectText.MatchString(h) {
				continue
			}
		case ShapeRound:
			if !tubeRoundText.MatchString(h) {
				continue
			}
		}
		if dims != nil && !strings.Contains(h, dims.String()) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// MatchTube runs the tube-family specialization: family and shape filter,
// exact dimension substring (retrying with the pair reversed to tolerate
// catalog order conventions), thickness, quality grade, then the general
// token score among whatever remains. The second return is false when the
// specialization does not apply and the caller should fall back to Match.
func (e *Engine) MatchTube(msg string, products []domain.Product) (TubeDecision, bool) {
	dims := Dimensions(msg)
	shape := ShapeFromMessage(msg)
	if shape == "" {
		shape = ShapeFromDims(dims)
	}
	if shape == "" {
		return TubeDecision{}, false
	}

	candidates := FilterTubeCandidates(products, dims, shape)
	if len(candidates) == 0 && dims != nil {
		reversed := dims.Reversed()
		candidates = FilterTubeCandidates(products, &reversed, shape)
	}
	if len(candidates) == 0 {
		return TubeDecision{}, false
	}

	if thickness := ThicknessMM(msg); thickness != "" {
		var byThickness []domain.Product
		for _, c := range candidates {
			if strings.Contains(ProductText(c), thickness+"mm") {
				byThickness = append(byThickness, c)
			}
		}
		if len(byThickness) > 0 {
			candidates = byThickness
		}
	} else {
		options := distinctThicknesses(candidates)
		if len(options) > 1 {
			return TubeDecision{ThicknessOptions: options}, true
		}
	}

	quality := QualityPreference(msg)
	if quality == "" {
		quality = "primera"
	}
	qualityPattern := regexp.MustCompile(`(?i)\b` + quality + `\b`)
	var byQuality []domain.Product
	for _, c := range candidates {
		if qualityPattern.MatchString(c.Name) {
			byQuality = append(byQuality, c)
		}
	}
	if len(byQuality) > 0 {
		candidates = byQuality
	}

	tokens := ExpandQuery(msg)
	var best *domain.Product
	bestScore := -1.0
	for i := range candidates {
		hay := ProductText(candidates[i])
		var s float64
		for _, tok := range tokens {
			if strings.Contains(hay, tok) {
				s += e.weights.Token
			}
		}
		if s > bestScore {
			best = &candidates[i]
			bestScore = s
		}
	}
	return TubeDecision{Product: best}, true
}

func distinctThicknesses(products []domain.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		t := ThicknessFromName(p.Name)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
