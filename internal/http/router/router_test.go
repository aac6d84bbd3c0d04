package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	apphttp "construbot_backend/internal/http"
	"construbot_backend/platform/config"
	"construbot_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func testEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg.CORSAllowAll = true
	return New(&apphttp.App{Config: cfg, Logger: logger.New("test")})
}

func TestTrustedProxyHonorsForwardedFor(t *testing.T) {
	engine := testEngine(t, &config.Config{TrustedProxies: []string{"127.0.0.1"}})
	engine.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Body.String() != "203.0.113.7" {
		t.Fatalf("client IP = %q, want the forwarded visitor address", rec.Body.String())
	}
}

func TestUntrustedProxyIgnoresForwardedFor(t *testing.T) {
	engine := testEngine(t, &config.Config{TrustedProxies: []string{"10.0.0.0/8"}})
	engine.GET("/whoami", func(c *gin.Context) { c.String(http.StatusOK, c.ClientIP()) })

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Body.String() != "127.0.0.1" {
		t.Fatalf("client IP = %q, want the direct peer address", rec.Body.String())
	}
}

func TestStaticFallbackServesPublicAssets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "extra.css"), []byte("body{margin:0}"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	engine := testEngine(t, &config.Config{PublicDir: dir})

	req := httptest.NewRequest(http.MethodGet, "/extra.css", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "body{margin:0}" {
		t.Fatalf("GET /extra.css = %d %q", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/missing.css", nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /missing.css = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/extra.css", nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("POST /extra.css = %d, want 404", rec.Code)
	}
}
