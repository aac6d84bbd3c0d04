// Package proforma provides the quote document bounded context module.
package proforma

import (
	apphttp "construbot_backend/internal/http"
	"construbot_backend/internal/pdf"
	"construbot_backend/internal/proforma/handler"
	"construbot_backend/internal/proforma/render"
	"construbot_backend/internal/sessions"
	"construbot_backend/platform/config"
	"construbot_backend/platform/logger"
)

// Config collects the slices of application config the proforma module needs.
type Config interface {
	config.CompanyConfig
	config.GotenbergConfig
}

// Module is the proforma bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the renderer and, when configured, the Gotenberg client.
func NewModule(cfg Config, log *logger.Logger, store *sessions.Store) *Module {
	var gotenberg *pdf.GotenbergClient
	if cfg.IsGotenbergEnabled() {
		gotenberg = pdf.NewGotenbergClient(cfg.GetGotenbergURL(), cfg.GetGotenbergUsername(), cfg.GetGotenbergPassword())
	} else {
		log.Warn("gotenberg not configured, /proforma.pdf will answer 501")
	}

	renderer := render.New(cfg)
	return &Module{
		handler: handler.New(store, renderer, gotenberg, cfg.GetCompanyName(), log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "proforma"
}

// RegisterRoutes mounts proforma routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/proforma", m.handler.View)
	ctx.Public.GET("/proforma.pdf", m.handler.PDF)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
