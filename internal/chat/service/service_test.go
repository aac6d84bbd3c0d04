package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"construbot_backend/internal/catalog/cache"
	"construbot_backend/internal/catalog/domain"
	"construbot_backend/internal/images"
	"construbot_backend/internal/matching"
	"construbot_backend/internal/sessions"
	"construbot_backend/platform/ai/openai"
	"construbot_backend/platform/config"
	"construbot_backend/platform/logger"
)

type stubSource struct {
	products []domain.Product
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	return s.products, nil
}

// fakeGenerator scripts both generation surfaces: the short name-extraction
// probe (MaxTokens 8) and the JSON-mode chat completion.
type fakeGenerator struct {
	nameReply string
	chatReply string
	chatErr   error
}

func (f *fakeGenerator) Complete(ctx context.Context, messages []openai.Message, opts openai.Options) (string, error) {
	if opts.MaxTokens == 8 {
		if f.nameReply == "" {
			return "NULL", nil
		}
		return f.nameReply, nil
	}
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.chatReply, nil
}

func testProducts() []domain.Product {
	return []domain.Product{
		{Name: "TUBO CUA NEG PRIMERA 20X20 2MM", Price: 8.5},
		{Name: "TUBO CUA NEG PRIMERA 20X20 1.5MM", Price: 7.2},
		{Name: "Teja Espanola Fondo Terracota 6.14 m.", Price: 15},
	}
}

func newTestService(t *testing.T, gen Generator) (*Service, *sessions.Store) {
	t.Helper()
	log := logger.New("test")
	c := cache.New(&stubSource{products: testProducts()}, 10*time.Minute, time.Second, log)
	c.Get(context.Background())

	store := sessions.New(30*time.Minute, 10)
	company := &config.Config{
		CompanyName:  "UP-CONS",
		CompanyPhone: "+593999999999",
	}
	engine := matching.NewEngine(matching.DefaultWeights())
	resolver := images.New(t.TempDir())

	return New(log, c, engine, store, resolver, gen, company, 50), store
}

func TestRespond_BareGreetingAsksForName(t *testing.T) {
	svc, _ := newTestService(t, nil)
	reply := svc.Respond(context.Background(), "v", "hola")
	if !strings.Contains(reply, "cuál es tu nombre") {
		t.Fatalf("expected name request, got %q", reply)
	}
}

func TestRespond_NameCaptureGreetsAndPersists(t *testing.T) {
	svc, store := newTestService(t, &fakeGenerator{nameReply: "Ana"})
	reply := svc.Respond(context.Background(), "v", "me llamo Ana")
	if !strings.Contains(reply, "Ana") {
		t.Fatalf("expected personalized greeting, got %q", reply)
	}
	if s := store.Get("v"); s.DisplayName != "Ana" {
		t.Fatalf("display name not persisted: %+v", s)
	}
}

func TestRespond_ViewEmptyQuote(t *testing.T) {
	svc, _ := newTestService(t, nil)
	reply := svc.Respond(context.Background(), "v", "ver mi proforma")
	if !strings.Contains(reply, "Aún no has agregado productos") {
		t.Fatalf("expected empty-quote prompt, got %q", reply)
	}
}

func TestRespond_AddFullySpecifiedTube(t *testing.T) {
	svc, store := newTestService(t, nil)
	reply := svc.Respond(context.Background(), "v", "quiero 5 tubos cuadrados 20x20 2mm")

	if !strings.Contains(reply, "He añadido 5 de TUBO CUA NEG PRIMERA 20X20 2MM") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(reply, "Total: $42.50") {
		t.Fatalf("expected total in reply %q", reply)
	}

	s := store.Get("v")
	if len(s.Quote) != 1 || s.Quote[0].Quantity != 5 || s.Quote[0].UnitPrice != 8.5 {
		t.Fatalf("quote not committed at catalog price: %+v", s.Quote)
	}
}

func TestRespond_AddMissingThicknessAsks(t *testing.T) {
	svc, store := newTestService(t, nil)
	reply := svc.Respond(context.Background(), "v", "quiero 5 tubos cuadrados de 20x20")

	if !strings.Contains(reply, "espesor") {
		t.Fatalf("expected thickness clarification, got %q", reply)
	}
	if s := store.Get("v"); len(s.Quote) != 0 {
		t.Fatalf("clarification must not commit to the quote: %+v", s.Quote)
	}
}

func TestRespond_AddAmbiguousTubeShapeAsks(t *testing.T) {
	svc, _ := newTestService(t, nil)
	reply := svc.Respond(context.Background(), "v", "quiero 5 tubos")
	if !strings.Contains(reply, "cuadrado, rectangular o redondo") {
		t.Fatalf("expected shape question, got %q", reply)
	}
}

func TestRespond_ViewAfterAdd(t *testing.T) {
	svc, _ := newTestService(t, nil)
	svc.Respond(context.Background(), "v", "quiero 5 tubos cuadrados 20x20 2mm")

	reply := svc.Respond(context.Background(), "v", "ver mi proforma")
	if !strings.Contains(reply, "Aquí tienes tu proforma actual:") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(reply, "| TUBO CUA NEG PRIMERA 20X20 2MM | 5 |") {
		t.Fatalf("expected quote row in %q", reply)
	}
}

func TestRespond_RemoveFromEmptyQuote(t *testing.T) {
	svc, _ := newTestService(t, nil)
	reply := svc.Respond(context.Background(), "v", "quita las tejas")
	if !strings.Contains(reply, "Tu proforma está vacía") {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestRespond_RemoveDecrementsQuantity(t *testing.T) {
	svc, store := newTestService(t, nil)
	svc.Respond(context.Background(), "v", "quiero 5 tubos cuadrados 20x20 2mm")

	reply := svc.Respond(context.Background(), "v", "quita 2 tubos cuadrados 20x20 2mm")
	if !strings.Contains(reply, "He quitado 2 unidades de TUBO CUA NEG PRIMERA 20X20 2MM") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if s := store.Get("v"); len(s.Quote) != 1 || s.Quote[0].Quantity != 3 {
		t.Fatalf("expected 3 remaining, got %+v", s.Quote)
	}
}

func TestRespond_ClearEmptiesQuote(t *testing.T) {
	svc, store := newTestService(t, nil)
	svc.Respond(context.Background(), "v", "quiero 5 tubos cuadrados 20x20 2mm")

	reply := svc.Respond(context.Background(), "v", "mejor vaciar la proforma")
	if !strings.Contains(reply, "tu proforma está vacía") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if s := store.Get("v"); len(s.Quote) != 0 {
		t.Fatalf("expected empty quote, got %+v", s.Quote)
	}
}

func TestRespond_RemoveWithoutQuantityAsks(t *testing.T) {
	svc, _ := newTestService(t, nil)
	svc.Respond(context.Background(), "v", "quiero 5 tubos cuadrados 20x20 2mm")

	reply := svc.Respond(context.Background(), "v", "quita el tubo cuadrado 20x20 2mm")
	if !strings.Contains(reply, "¿Cuántas unidades deseas quitar") {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestRespond_GenerationReconcilesProposedQuote(t *testing.T) {
	gen := &fakeGenerator{
		chatReply: `{"reply": "¡Claro! He añadido las tejas.", "proforma": [
			{"nombre": "Teja Espanola Fondo Terracota 6.14 m.", "cantidad": 10, "precio": 1.0},
			{"nombre": "PRODUCTO INVENTADO", "cantidad": 3, "precio": 99.0}
		]}`,
	}
	svc, store := newTestService(t, gen)
	setName(store, "v", "Ana")

	reply := svc.Respond(context.Background(), "v", "dame informacion sobre materiales para techo")
	if !strings.Contains(reply, "He añadido las tejas") {
		t.Fatalf("unexpected reply %q", reply)
	}

	s := store.Get("v")
	if len(s.Quote) != 1 {
		t.Fatalf("hallucinated product survived reconciliation: %+v", s.Quote)
	}
	if s.Quote[0].UnitPrice != 15 {
		t.Fatalf("generation price trusted: %f", s.Quote[0].UnitPrice)
	}
}

func TestRespond_GenerationFailureFallsBack(t *testing.T) {
	svc, store := newTestService(t, &fakeGenerator{chatErr: errors.New("upstream down")})
	setName(store, "v", "Ana")

	reply := svc.Respond(context.Background(), "v", "dame informacion sobre tejas")
	if !strings.Contains(reply, "estas opciones están disponibles") {
		t.Fatalf("expected fallback listing, got %q", reply)
	}
	if !strings.Contains(reply, "/proforma") {
		t.Fatalf("expected proforma link in %q", reply)
	}
}

func TestRespond_GenerationAppendsHistory(t *testing.T) {
	gen := &fakeGenerator{chatReply: `{"reply": "Con gusto.", "proforma": []}`}
	svc, store := newTestService(t, gen)
	setName(store, "v", "Ana")

	svc.Respond(context.Background(), "v", "cuales materiales manejan")
	s := store.Get("v")
	if len(s.History) != 2 {
		t.Fatalf("expected user+assistant turns, got %+v", s.History)
	}
	if s.History[0].Role != "user" || s.History[1].Role != "assistant" {
		t.Fatalf("unexpected turn roles %+v", s.History)
	}
}

func setName(store *sessions.Store, visitorID, name string) {
	store.Update(visitorID, sessions.Patch{DisplayName: &name})
}
