package matching

import (
	"reflect"
	"strings"
	"testing"

	"construbot_backend/internal/catalog/domain"
)

func TestNormalize_StripsDiacriticsSymbolsAndStopWords(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"¿Cuánto cuestan las Tejas?", "cuanto cuestan tejas"},
		{"TUBO CUA NEG 20X20", "tubo cua neg 20x20"},
		{"teja española de 6 metros", "teja espanola 6 metros"},
		{"  plancha   galvanizada ", "plancha galvanizada"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"¿Cuánto cuestan las Tejas?",
		"TUBO CUA NEG PRIMERA 20X20 2MM",
		"teja española fondo terracota 6.14 m.",
		"100 × 50",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q != %q", in, twice, once)
		}
	}
}

func TestSingularize(t *testing.T) {
	cases := map[string]string{
		"tubos":      "tubo",
		"tejas":      "teja",
		"planchas":   "plancha",
		"capuchones": "capuchon",
		"tornillos":  "tornillo",
		"metro":      "metro",
		"20x20":      "20x20",
	}
	for in, want := range cases {
		if got := Singularize(in); got != want {
			t.Fatalf("Singularize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQueryTokens_SingularizesAndDeduplicates(t *testing.T) {
	got := QueryTokens("tubos tubo Tubos de 20x20")
	want := []string{"tubo", "20x20"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("QueryTokens = %v, want %v", got, want)
	}
}

func TestProductText_ExpandsAbbreviations(t *testing.T) {
	p := domain.Product{Name: "TUBO CUA NEG PRIMERA 20X20 2MM", Price: 8.5}
	got := ProductText(p)
	want := "tubo cuadrado negro primera 20x20 2mm 8.5"
	if got != want {
		t.Fatalf("ProductText = %q, want %q", got, want)
	}
}

func TestProductText_RoundsDecimalMeters(t *testing.T) {
	p := domain.Product{Name: "Teja Espanola Fondo Terracota 6.14 m.", Price: 15}
	got := ProductText(p)
	if !contains(got, "6m") {
		t.Fatalf("expected rounded length 6m in %q", got)
	}
	if contains(got, "6.14") {
		t.Fatalf("expected decimal length removed from %q", got)
	}
}

func TestProductText_IncludesAllFields(t *testing.T) {
	p := domain.Product{
		Name:     "Electrodo 6011",
		Category: "Soldadura",
		Size:     "1/8",
		Brand:    "AGA",
		Price:    3.2,
	}
	got := ProductText(p)
	for _, part := range []string{"electrodo", "6011", "soldadura", "aga", "3.2"} {
		if !contains(got, part) {
			t.Fatalf("expected %q in product text %q", part, got)
		}
	}
}

func TestExpandQuery_CorrectionsAndSynonyms(t *testing.T) {
	got := ExpandQuery("quiero tornillos autopoerforante")
	set := make(map[string]bool)
	for _, tok := range got {
		set[tok] = true
	}
	for _, want := range []string{"tornillo", "autoperforante", "perno", "quiero"} {
		if !set[want] {
			t.Fatalf("expected token %q in expansion %v", want, got)
		}
	}
}

func TestExpandQuery_IsAdditive(t *testing.T) {
	base := QueryTokens("teja espanola 6m")
	expanded := ExpandQuery("teja espanola 6m")
	set := make(map[string]bool)
	for _, tok := range expanded {
		set[tok] = true
	}
	for _, tok := range base {
		if !set[tok] {
			t.Fatalf("expansion dropped base token %q: %v", tok, expanded)
		}
	}
}

func contains(haystack, needle string) bool {
	return strings.Contains(haystack, needle)
}
