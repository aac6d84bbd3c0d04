// Package catalog provides the catalog bounded context module: the product
// source, the snapshot cache, and the operator/health endpoints.
package catalog

import (
	"context"

	"construbot_backend/internal/catalog/cache"
	"construbot_backend/internal/catalog/handler"
	"construbot_backend/internal/catalog/repository"
	"construbot_backend/internal/catalog/watcher"
	apphttp "construbot_backend/internal/http"
	"construbot_backend/platform/config"
	"construbot_backend/platform/logger"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	cache   *cache.Cache
	watcher *watcher.Watcher
	log     *logger.Logger
}

// NewModule creates and initializes the catalog module.
func NewModule(cfg config.CatalogConfig, log *logger.Logger) *Module {
	source := repository.NewFileSource(cfg.GetCatalogPath())
	c := cache.New(source, cfg.GetCatalogTTL(), cfg.GetCatalogFetchTimeout(), log)

	var w *watcher.Watcher
	if cfg.GetCatalogWatchEnabled() {
		var err error
		w, err = watcher.New(cfg.GetCatalogPath(), c, log)
		if err != nil {
			log.Warn("catalog watcher unavailable", "error", err)
		}
	}

	return &Module{
		handler: handler.New(c),
		cache:   c,
		watcher: w,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Cache returns the snapshot cache for other modules (price truth).
func (m *Module) Cache() *cache.Cache {
	return m.cache
}

// Start warms the cache and runs the source watcher until ctx is canceled.
func (m *Module) Start(ctx context.Context) {
	m.cache.Get(ctx)
	if m.watcher != nil {
		go m.watcher.Run(ctx)
	}
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.GET("/health", m.handler.Health)
	ctx.Admin.POST("/refresh-products", m.handler.Refresh)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
