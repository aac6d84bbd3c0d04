// Package service implements the conversational flow: name capture, local
// deterministic quote operations, and the generation call with price
// reconciliation. Everything that touches the quote goes through the quote
// package so catalog prices stay authoritative regardless of what the
// generation service proposes.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"construbot_backend/internal/catalog/cache"
	"construbot_backend/internal/catalog/domain"
	"construbot_backend/internal/images"
	"construbot_backend/internal/matching"
	"construbot_backend/internal/quote"
	"construbot_backend/internal/sessions"
	"construbot_backend/platform/ai/openai"
	"construbot_backend/platform/config"
	"construbot_backend/platform/logger"
	"construbot_backend/platform/phone"
)

// Generator is the slice of the completion client the service needs.
type Generator interface {
	Complete(ctx context.Context, messages []openai.Message, opts openai.Options) (string, error)
}

// Service orchestrates one chat turn per visitor.
type Service struct {
	log        *logger.Logger
	catalog    *cache.Cache
	engine     *matching.Engine
	sessions   *sessions.Store
	images     *images.Resolver
	generator  Generator
	company    config.CompanyConfig
	telLink    string
	contextCap int
}

// New creates the chat service. generator may be nil when no generation
// backend is configured; the service then answers from local matching only.
// contextCap bounds how many catalog products are embedded in the prompt.
func New(
	log *logger.Logger,
	catalog *cache.Cache,
	engine *matching.Engine,
	store *sessions.Store,
	resolver *images.Resolver,
	generator Generator,
	company config.CompanyConfig,
	contextCap int,
) *Service {
	if contextCap <= 0 {
		contextCap = 50
	}
	return &Service{
		log:        log,
		catalog:    catalog,
		engine:     engine,
		sessions:   store,
		images:     resolver,
		generator:  generator,
		company:    company,
		telLink:    phone.TelLink(company.GetCompanyPhone()),
		contextCap: contextCap,
	}
}

var tejaName = regexp.MustCompile(`(?i)\bteja\b`)

// Respond handles one user message for the given visitor and returns the
// assistant reply. visitorID is the transport-layer session key.
func (s *Service) Respond(ctx context.Context, visitorID, message string) string {
	session := s.sessions.Get(visitorID)
	history := session.History

	// Name capture runs only while the visitor is anonymous. A detected name
	// short-circuits the turn with a personalized greeting.
	if session.DisplayName == "" {
		if s.generator != nil {
			if name := s.extractName(ctx, message); name != "" {
				reply := fmt.Sprintf("¡Excelente, %s! Un gusto. Puedo ayudarte a crear una proforma. ¿Qué materiales necesitas?", name)
				newHistory := appendTurns(history, message, reply)
				s.sessions.Update(visitorID, sessions.Patch{DisplayName: &name, History: &newHistory})
				return reply
			}
		}
		if matching.IsGreeting(message) {
			return "¡Hola! Soy un asesor de ventas con inteligencia artificial. Para darte una atención más personalizada, ¿cuál es tu nombre?"
		}
	}

	products := s.catalog.Get(ctx)

	if matching.WantsView(message) {
		if len(session.Quote) == 0 {
			return "Aún no has agregado productos. ¿Qué deseas cotizar?"
		}
		return s.renderQuote("Aquí tienes tu proforma actual:", session.Quote)
	}

	if matching.WantsClear(message) {
		next := quote.Clear(session.Quote)
		reply := "Listo, tu proforma está vacía. ¿Qué deseas cotizar?"
		newHistory := appendTurns(history, message, reply)
		s.sessions.Update(visitorID, sessions.Patch{Quote: &next, History: &newHistory})
		return reply
	}

	order := matching.ParseOrderInfo(message)

	if matching.WantsAdd(message) && order.Quantity != nil {
		if reply, handled := s.handleAdd(visitorID, message, order, products, session, history); handled {
			return reply
		}
	}

	if matching.WantsRemove(message) {
		return s.handleRemove(visitorID, message, products, session, history)
	}

	if matching.WantsUpdate(message) && order.Quantity != nil {
		if reply, handled := s.handleUpdate(visitorID, message, *order.Quantity, products, session, history); handled {
			return reply
		}
	}

	if s.generator == nil {
		return s.fallbackReply(message, products)
	}
	return s.generate(ctx, visitorID, message, products, session, history)
}

// handleAdd resolves the best product for an add request and merges it into
// the quote. Returns handled=false when no product could be resolved, letting
// the generation path take over.
func (s *Service) handleAdd(visitorID, message string, order matching.OrderInfo, products []domain.Product, session sessions.Session, history []sessions.Turn) (string, bool) {
	requested := matching.ShapeFromMessage(message)
	inferred := matching.ShapeFromDims(order.Dims)
	shape := requested
	if shape == "" {
		shape = inferred
	}

	mentionsTube := matching.MentionsTube(message) || shape != ""
	if mentionsTube && shape == "" {
		return "¿Qué tipo de tubo necesitas: cuadrado, rectangular o redondo?", true
	}
	if requested != "" && inferred != "" && requested != inferred {
		return fmt.Sprintf("Mencionas la medida %s, que suele ser %s. ¿Confirmas que lo quieres %s o mejor %s?",
			order.Dims.String(), inferred, requested, inferred), true
	}

	var best *domain.Product
	if mentionsTube {
		if decision, ok := s.engine.MatchTube(message, products); ok {
			if len(decision.ThicknessOptions) > 0 {
				target := "el tubo"
				if order.Dims != nil {
					target = order.Dims.String()
				}
				return fmt.Sprintf("¿Qué espesor prefieres para %s %s? Opciones: %s.",
					target, shape, strings.Join(decision.ThicknessOptions, ", ")), true
			}
			best = decision.Product
		}
	}
	if best == nil {
		best = s.engine.Match(message, products)
	}
	if best == nil {
		return "", false
	}

	price := best.Price
	if official, ok := s.catalog.PriceFor(best.Name); ok {
		price = official
	}
	next := quote.Add(session.Quote, best.Name, *order.Quantity, price)
	newHistory := appendTurns(history, message, "")
	s.sessions.Update(visitorID, sessions.Patch{Quote: &next, History: &newHistory})

	extra := ""
	if tejaName.MatchString(best.Name) {
		img := s.images.URLFor(best.Name)
		if img == "" {
			img = s.images.URLFor("teja espanola")
		}
		if img != "" {
			extra = fmt.Sprintf("\n\nVista: <a href=\"%s\" target=\"_blank\">Ver imagen</a>", img)
		}
	}
	lead := fmt.Sprintf("¡Excelente elección! He añadido %d de %s a tu proforma.%s", *order.Quantity, best.Name, extra)
	return s.renderQuote(lead, next), true
}

func (s *Service) handleRemove(visitorID, message string, products []domain.Product, session sessions.Session, history []sessions.Turn) string {
	if len(session.Quote) == 0 {
		return "Tu proforma está vacía. ¿Qué deseas quitar?"
	}

	best := s.engine.Match(message, products)
	if best == nil {
		var names []string
		for _, l := range session.Quote {
			names = append(names, fmt.Sprintf("- %s (cant: %d)", l.ProductName, l.Quantity))
		}
		return fmt.Sprintf("No identifiqué el producto a quitar. Indícame el nombre exacto o la medida.\n\nActualmente en tu proforma:\n%s",
			strings.Join(names, "\n"))
	}

	removeQty := matching.Quantity(message)
	if removeQty == nil {
		return fmt.Sprintf("¿Cuántas unidades deseas quitar de %s?", best.Name)
	}

	next := quote.Remove(session.Quote, best.Name, removeQty)
	newHistory := appendTurns(history, message, "")
	s.sessions.Update(visitorID, sessions.Patch{Quote: &next, History: &newHistory})
	return s.renderQuote(fmt.Sprintf("He quitado %d unidades de %s.", *removeQty, best.Name), next)
}

// handleUpdate sets an absolute quantity. When the message does not resolve
// to a product, the most recently added line is assumed to be the target.
func (s *Service) handleUpdate(visitorID, message string, quantity int, products []domain.Product, session sessions.Session, history []sessions.Turn) (string, bool) {
	name := ""
	if best := s.engine.Match(message, products); best != nil {
		name = best.Name
	} else if len(session.Quote) > 0 {
		name = session.Quote[len(session.Quote)-1].ProductName
	}
	if name == "" {
		return "", false
	}

	next, found := quote.SetQuantity(session.Quote, name, quantity)
	if !found {
		return "", false
	}
	newHistory := appendTurns(history, message, "")
	s.sessions.Update(visitorID, sessions.Patch{Quote: &next, History: &newHistory})
	return s.renderQuote(fmt.Sprintf("He ajustado %s a %d unidades.", name, quantity), next), true
}

// generate runs the full generation path: context-limited catalog subset,
// system prompt, bounded history, JSON-mode completion, then price
// reconciliation of whatever quote the model proposed.
func (s *Service) generate(ctx context.Context, visitorID, message string, products []domain.Product, session sessions.Session, history []sessions.Turn) string {
	ranked := s.engine.Rank(message, products)
	contextProducts := ranked
	if len(contextProducts) == 0 {
		contextProducts = products
	}

	prompt := s.systemPrompt(session, contextProducts)
	messages := make([]openai.Message, 0, len(history)+2)
	messages = append(messages, openai.Message{Role: "system", Content: prompt})
	for _, turn := range history {
		messages = append(messages, openai.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, openai.Message{Role: "user", Content: message})

	raw, err := s.generator.Complete(ctx, messages, openai.Options{
		Temperature: 0.6,
		MaxTokens:   800,
		JSONMode:    true,
	})
	if err != nil {
		s.log.GenerationError("chat", err)
		return s.fallbackReply(message, products)
	}

	var parsed struct {
		Reply    string       `json:"reply"`
		Proforma []quote.Line `json:"proforma"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed.Reply == "" {
		if err != nil {
			s.log.GenerationError("chat_parse", err)
		}
		return s.fallbackReply(message, products)
	}

	reply := parsed.Reply
	normalized := matching.Normalize(message)
	if strings.Contains(normalized, "teja") && strings.Contains(normalized, "espanola") {
		if img := s.images.URLFor(message); img != "" {
			reply += fmt.Sprintf("\n\nPuedes ver una imagen de referencia:<br><img src=\"%s\" alt=\"Imagen de Teja Española\" style=\"width: 100%%; max-width: 200px; height: auto; border-radius: 8px; margin-top: 8px;\">", img)
		}
	}

	newHistory := appendTurns(history, message, reply)
	patch := sessions.Patch{History: &newHistory}
	if parsed.Proforma != nil {
		// The model's prices are advisory. Every line is re-priced from the
		// catalog and hallucinated products are dropped.
		verified := quote.Reconcile(parsed.Proforma, s.catalog.PriceFor)
		patch.Quote = &verified
	}
	s.sessions.Update(visitorID, patch)

	return reply
}

// extractName asks the model whether the message contains a person name.
// Empty string means no name was found or the call failed.
func (s *Service) extractName(ctx context.Context, message string) string {
	raw, err := s.generator.Complete(ctx, []openai.Message{
		{Role: "system", Content: nameExtractionPrompt(message)},
	}, openai.Options{Temperature: 0, MaxTokens: 8})
	if err != nil {
		s.log.GenerationError("name_extraction", err)
		return ""
	}
	name := strings.TrimSpace(raw)
	if name == "" || strings.EqualFold(name, "NULL") || len(name) > 20 {
		return ""
	}
	return name
}

// renderQuote formats the quote table with the total and the standing links.
func (s *Service) renderQuote(lead string, lines []quote.Line) string {
	table, total := quote.Markdown(lines, s.images.URLFor)
	tail := fmt.Sprintf("\n\nPuedes ver tu proforma detallada aquí: /proforma\nDescarga tu proforma aquí: /proforma?download=1\nPuedes llamarnos aquí: %s", s.telLink)
	return fmt.Sprintf("%s\n\n%s\n\nTotal: $%.2f%s", lead, table, total, tail)
}

// fallbackReply answers deterministically when generation is unavailable:
// the top locally ranked candidates, or a clarification request when the
// catalog itself is empty.
func (s *Service) fallbackReply(message string, products []domain.Product) string {
	base := s.engine.Rank(message, products)
	if len(base) == 0 {
		base = products
	}
	if len(base) == 0 {
		return fmt.Sprintf("No puedo acceder a la IA ni a la lista de productos por ahora. ¿Podrías decirme más detalles (producto, medida, cantidad, color)?\n\nLlámanos: %s", s.telLink)
	}

	top := base
	if len(top) > 5 {
		top = top[:5]
	}
	var lines []string
	for _, p := range top {
		tag := ""
		if img := s.images.URLFor(p.Name); img != "" {
			tag = fmt.Sprintf("<img src=\"%s\" alt=\"%s\" style=\"height:48px;width:auto;vertical-align:middle;margin-right:6px;border-radius:3px;\">", img, p.Name)
		}
		lines = append(lines, fmt.Sprintf("%s%s: $%.2f", tag, p.Name, p.Price))
	}
	return fmt.Sprintf("Por ahora no puedo generar una respuesta avanzada, pero estas opciones están disponibles:\n\n%s\n\n¿Te interesa alguno? Puedes indicarme medida, calibre o cantidad.\n\nPuedes ver tu proforma aquí: /proforma\nDescarga tu proforma aquí: /proforma.pdf\nLlámanos: %s",
		strings.Join(lines, "\n"), s.telLink)
}

func appendTurns(history []sessions.Turn, userMessage, assistantReply string) []sessions.Turn {
	next := make([]sessions.Turn, 0, len(history)+2)
	next = append(next, history...)
	next = append(next, sessions.Turn{Role: "user", Content: userMessage})
	if assistantReply != "" {
		next = append(next, sessions.Turn{Role: "assistant", Content: assistantReply})
	}
	return next
}
