// Package router assembles the Gin engine from the application modules.
package router

import (
	"net/http"
	"path"
	"path/filepath"

	apphttp "construbot_backend/internal/http"
	"construbot_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// New builds the engine: shared middleware, static assets, and every
// module's routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	// Sessions are keyed on the client IP, so the proxy chain must be
	// resolved correctly. An empty list keeps Gin's trust-everything
	// default, matching a typical single-proxy hosting setup.
	if proxies := app.Config.GetTrustedProxies(); len(proxies) > 0 {
		if err := engine.SetTrustedProxies(proxies); err != nil {
			app.Logger.Warn("invalid TRUSTED_PROXIES, keeping defaults", "error", err)
		}
	}
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	publicDir := app.Config.GetPublicDir()
	engine.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(publicDir, "index.html"))
	})
	engine.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	engine.Static("/images", filepath.Join(publicDir, "images"))
	engine.StaticFile("/script.js", filepath.Join(publicDir, "script.js"))
	// Any path no route claims is tried against public/, so frontend
	// assets work without a mount per file.
	engine.NoRoute(staticFallback(publicDir))

	chatLimiter := httpkit.NewIPRateLimiter(rate.Limit(1), 5, app.Logger)

	ctx := &apphttp.RouterContext{
		Engine:        engine,
		Public:        engine.Group("/"),
		Admin:         engine.Group("/admin", httpkit.AdminRequired(app.Config)),
		ChatRateLimit: chatLimiter.RateLimit(),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Debug("routes registered", "module", module.Name())
	}

	return engine
}

func staticFallback(dir string) gin.HandlerFunc {
	fs := http.Dir(dir)
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Status(http.StatusNotFound)
			return
		}
		name := path.Clean("/" + c.Request.URL.Path)
		f, err := fs.Open(name)
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		info, statErr := f.Stat()
		f.Close()
		if statErr != nil || info.IsDir() {
			c.Status(http.StatusNotFound)
			return
		}
		c.FileFromFS(name, fs)
	}
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Content-Type", "Authorization"}
	if app.Config.GetCORSAllowAll() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = app.Config.GetCORSOrigins()
	}
	return cors.New(cfg)
}
