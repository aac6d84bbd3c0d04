package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"construbot_backend/internal/catalog"
	"construbot_backend/internal/chat"
	apphttp "construbot_backend/internal/http"
	"construbot_backend/internal/http/router"
	"construbot_backend/internal/images"
	"construbot_backend/internal/proforma"
	"construbot_backend/internal/sessions"
	"construbot_backend/platform/config"
	"construbot_backend/platform/logger"
	"construbot_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	// Shared validator instance for dependency injection
	val := validator.New()

	// Per-visitor session store with lazy TTL eviction plus a background
	// sweep to bound memory.
	store := sessions.New(cfg.SessionTTL, cfg.HistoryWindow)
	go store.RunJanitor(ctx, 5*time.Minute)

	// Product image lookup from the public assets directory.
	resolver := images.New(cfg.PublicDir)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	catalogModule := catalog.NewModule(cfg, log)
	catalogModule.Start(ctx)

	chatModule := chat.NewModule(cfg, log, catalogModule.Cache(), store, resolver, val)
	proformaModule := proforma.NewModule(cfg, log, store)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Modules: []apphttp.Module{
			catalogModule,
			chatModule,
			proformaModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}
