// Package chat provides the conversational bounded context module.
package chat

import (
	"construbot_backend/internal/catalog/cache"
	"construbot_backend/internal/chat/handler"
	"construbot_backend/internal/chat/service"
	apphttp "construbot_backend/internal/http"
	"construbot_backend/internal/images"
	"construbot_backend/internal/matching"
	"construbot_backend/internal/sessions"
	"construbot_backend/platform/ai/openai"
	"construbot_backend/platform/config"
	"construbot_backend/platform/logger"
	"construbot_backend/platform/validator"
)

// Config collects the slices of application config the chat module needs.
type Config interface {
	config.GenerationConfig
	config.CompanyConfig
}

// Module is the chat bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the chat service from shared infrastructure. The generation
// client is only created when a plausible API key is configured; without it
// the service answers from local matching alone.
func NewModule(
	cfg Config,
	log *logger.Logger,
	catalog *cache.Cache,
	store *sessions.Store,
	resolver *images.Resolver,
	v *validator.Validator,
) *Module {
	var generator service.Generator
	if cfg.IsGenerationEnabled() {
		generator = openai.New(openai.Config{
			APIKey:  cfg.GetOpenAIAPIKey(),
			BaseURL: cfg.GetOpenAIBaseURL(),
			Model:   cfg.GetOpenAIModel(),
			Timeout: cfg.GetOpenAITimeout(),
		})
	} else {
		log.Warn("generation disabled, chat answers from local matching only")
	}

	engine := matching.NewEngine(matching.DefaultWeights())
	svc := service.New(log, catalog, engine, store, resolver, generator, cfg, cfg.GetContextProductCap())

	return &Module{handler: handler.New(svc, v)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes mounts chat routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.POST("/chat", ctx.ChatRateLimit, m.handler.Chat)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
