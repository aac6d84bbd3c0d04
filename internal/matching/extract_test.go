package matching

import "testing"

func TestDimensions(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"tubo de 20x20", "20x20"},
		{"tubo 100 x 50", "100x50"},
		{"plancha 122 × 244", "122x244"},
	}
	for _, tc := range cases {
		got := Dimensions(tc.in)
		if got == nil {
			t.Fatalf("Dimensions(%q) = nil, want %q", tc.in, tc.want)
		}
		if got.String() != tc.want {
			t.Fatalf("Dimensions(%q) = %q, want %q", tc.in, got.String(), tc.want)
		}
	}

	if got := Dimensions("tubo cuadrado negro"); got != nil {
		t.Fatalf("Dimensions without dims = %v, want nil", got)
	}
	// Single small digits never form a dimension pair.
	if got := Dimensions("5x5"); got != nil {
		t.Fatalf("Dimensions(5x5) = %v, want nil", got)
	}
}

func TestDimPair_Reversed(t *testing.T) {
	d := DimPair{A: 20, B: 40}
	if r := d.Reversed(); r.String() != "40x20" {
		t.Fatalf("Reversed = %q, want 40x20", r.String())
	}
}

func TestThicknessMM(t *testing.T) {
	cases := map[string]string{
		"tubo 20x20 2mm":      "2",
		"plancha de 1.5 mm":   "1.5",
		"espesor 2.0mm":       "2",
		"tubo cuadrado 20x20": "",
	}
	for in, want := range cases {
		if got := ThicknessMM(in); got != want {
			t.Fatalf("ThicknessMM(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestQuantity_UnitWordRule(t *testing.T) {
	cases := map[string]int{
		"quiero 12 unidades":     12,
		"dame 3 cajas de pernos": 3,
		"2 pzas por favor":       2,
	}
	for in, want := range cases {
		got := Quantity(in)
		if got == nil || *got != want {
			t.Fatalf("Quantity(%q) = %v, want %d", in, got, want)
		}
	}
}

func TestQuantity_VerbRuleRejectsMeasurements(t *testing.T) {
	// The number after the verb is part of a dimension, not a quantity.
	if got := Quantity("quiero tubos de 20x20"); got != nil {
		t.Fatalf("Quantity(dims only) = %d, want nil", *got)
	}
	if got := Quantity("pon 2mm de espesor"); got != nil {
		t.Fatalf("Quantity(thickness only) = %d, want nil", *got)
	}

	got := Quantity("necesito 10 tejas para el techo")
	if got == nil || *got != 10 {
		t.Fatalf("Quantity(verb+number) = %v, want 10", got)
	}
}

func TestQuantity_PluralNounRule(t *testing.T) {
	got := Quantity("5 tubos cuadrados 20x20 2mm")
	if got == nil || *got != 5 {
		t.Fatalf("Quantity(plural noun) = %v, want 5", got)
	}
	if got := Quantity("tubo cuadrado sin cantidad"); got != nil {
		t.Fatalf("Quantity(no number) = %d, want nil", *got)
	}
}

func TestQuantity_LastOccurrenceWins(t *testing.T) {
	got := Quantity("quiero 3 unidades, mejor 7 unidades")
	if got == nil || *got != 7 {
		t.Fatalf("Quantity = %v, want 7", got)
	}
}

func TestShapeFromMessage(t *testing.T) {
	cases := map[string]TubeShape{
		"tubos cuadrados 20x20":    ShapeSquare,
		"tubo rectangular de 2mm":  ShapeRectangular,
		"quiero un tubo redondo":   ShapeRound,
		"necesito tejas espanolas": "",
	}
	for in, want := range cases {
		if got := ShapeFromMessage(in); got != want {
			t.Fatalf("ShapeFromMessage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShapeFromDims(t *testing.T) {
	if got := ShapeFromDims(&DimPair{A: 20, B: 20}); got != ShapeSquare {
		t.Fatalf("equal dims = %q, want %q", got, ShapeSquare)
	}
	if got := ShapeFromDims(&DimPair{A: 20, B: 40}); got != ShapeRectangular {
		t.Fatalf("unequal dims = %q, want %q", got, ShapeRectangular)
	}
	if got := ShapeFromDims(nil); got != "" {
		t.Fatalf("nil dims = %q, want empty", got)
	}
}

func TestThicknessFromName(t *testing.T) {
	if got := ThicknessFromName("TUBO CUA NEG PRIMERA 20X20 1.5MM"); got != "1.5" {
		t.Fatalf("ThicknessFromName = %q, want 1.5", got)
	}
	if got := ThicknessFromName("TEJA ESPANOLA 6.14 m."); got != "" {
		t.Fatalf("ThicknessFromName = %q, want empty", got)
	}
}

func TestQualityPreference(t *testing.T) {
	cases := map[string]string{
		"tubo de segunda":       "segunda",
		"calidad especial":      "especial",
		"tubo primera 20x20":    "primera",
		"tubo cuadrado sin mas": "",
	}
	for in, want := range cases {
		if got := QualityPreference(in); got != want {
			t.Fatalf("QualityPreference(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIntentPredicates(t *testing.T) {
	if !WantsView("ver mi proforma") || !WantsView("cómo va la cuenta") {
		t.Fatal("view intent not detected")
	}
	if !WantsAdd("agrega 5 tubos") || !WantsAdd("necesito tejas") {
		t.Fatal("add intent not detected")
	}
	if !WantsRemove("quita las tejas") || WantsRemove("quiero tejas") {
		t.Fatal("remove intent misdetected")
	}
	if !WantsUpdate("deja solo 3") {
		t.Fatal("update intent not detected")
	}
	if !WantsClear("empezar de nuevo") {
		t.Fatal("clear intent not detected")
	}
	if !IsGreeting("Hola") || IsGreeting("hola, quiero tubos") {
		t.Fatal("greeting must match bare greetings only")
	}
	if !MentionsTube("un tubo de 20x20") || !MentionsTube("quiero 5 tubos") || MentionsTube("tuberia de agua") {
		t.Fatal("tube mention must be a whole word, singular or plural")
	}
}
