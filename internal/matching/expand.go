package matching

// corrections rewrites frequent misspellings to the canonical token. Keys and
// values are in normalized, singularized form since lookup happens after
// QueryTokens.
var corrections = map[string]string{
	"autopoerforante": "autoperforante",
	"autoperforantes": "autoperforante",
}

// synonyms maps a canonical token to related tokens worth adding to the
// query. Hand-curated; expansion is one level deep, no transitive closure.
var synonyms = map[string][]string{
	"tornillo":  {"autoperforante", "perno"},
	"tornillos": {"autoperforante", "perno"},
	"perno":     {"perno", "autoperforante"},
	"pernos":    {"perno", "autoperforante"},
	"teja":      {"teja"},
	"espanola":  {"espanola"},
	"capuchon":  {"capuchon"},
}

// ExpandQuery produces the unique token set used for scoring: query tokens
// with misspellings corrected and synonyms added. Purely additive — a token
// is never removed, only rewritten or joined by related ones.
func ExpandQuery(rawQuery string) []string {
	base := QueryTokens(rawQuery)
	seen := make(map[string]struct{})
	var out []string
	add := func(tok string) {
		if _, dup := seen[tok]; dup {
			return
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}

	for _, tok := range base {
		if fixed, ok := corrections[tok]; ok {
			tok = fixed
		}
		add(tok)
		for _, syn := range synonyms[tok] {
			add(Singularize(syn))
		}
	}
	return out
}
