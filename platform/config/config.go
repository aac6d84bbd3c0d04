// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetPublicDir() string
	GetTrustedProxies() []string
}

// CatalogConfig provides settings for the catalog cache and its source.
type CatalogConfig interface {
	GetCatalogPath() string
	GetCatalogTTL() time.Duration
	GetCatalogFetchTimeout() time.Duration
	GetCatalogWatchEnabled() bool
}

// SessionConfig provides settings for the visitor session store.
type SessionConfig interface {
	GetSessionTTL() time.Duration
	GetHistoryWindow() int
}

// GenerationConfig provides settings for the external generation service.
type GenerationConfig interface {
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetOpenAIModel() string
	GetOpenAITimeout() time.Duration
	GetContextProductCap() int
	IsGenerationEnabled() bool
}

// GotenbergConfig provides settings for the Gotenberg HTML-to-PDF service.
type GotenbergConfig interface {
	GetGotenbergURL() string
	GetGotenbergUsername() string
	GetGotenbergPassword() string
	IsGotenbergEnabled() bool
}

// AdminConfig provides the operator token for privileged endpoints.
type AdminConfig interface {
	GetAdminToken() string
}

// CompanyConfig provides the retailer identity shown on proformas.
type CompanyConfig interface {
	GetCompanyName() string
	GetCompanyAddress() string
	GetCompanyPhone() string
	GetCompanyWebsite() string
	GetCompanyBranches() []string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	CORSAllowAll        bool
	CORSOrigins         []string
	PublicDir           string
	TrustedProxies      []string
	CatalogPath         string
	CatalogTTL          time.Duration
	CatalogFetchTimeout time.Duration
	CatalogWatchEnabled bool
	SessionTTL          time.Duration
	HistoryWindow       int
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	OpenAITimeout       time.Duration
	ContextProductCap   int
	GotenbergURL        string
	GotenbergUsername   string
	GotenbergPassword   string
	AdminToken          string
	CompanyName         string
	CompanyAddress      string
	CompanyPhone        string
	CompanyWebsite      string
	CompanyBranches     []string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetPublicDir() string     { return c.PublicDir }

// GetTrustedProxies returns the CIDRs whose X-Forwarded-For headers are
// honored when resolving the client IP. Visitor sessions are keyed on that
// IP, so behind a reverse proxy this must cover the proxy or every visitor
// collapses into one session.
func (c *Config) GetTrustedProxies() []string { return c.TrustedProxies }

// CatalogConfig implementation
func (c *Config) GetCatalogPath() string                { return c.CatalogPath }
func (c *Config) GetCatalogTTL() time.Duration          { return c.CatalogTTL }
func (c *Config) GetCatalogFetchTimeout() time.Duration { return c.CatalogFetchTimeout }
func (c *Config) GetCatalogWatchEnabled() bool          { return c.CatalogWatchEnabled }

// SessionConfig implementation
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }
func (c *Config) GetHistoryWindow() int        { return c.HistoryWindow }

// GenerationConfig implementation
func (c *Config) GetOpenAIAPIKey() string         { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIBaseURL() string        { return c.OpenAIBaseURL }
func (c *Config) GetOpenAIModel() string          { return c.OpenAIModel }
func (c *Config) GetOpenAITimeout() time.Duration { return c.OpenAITimeout }
func (c *Config) GetContextProductCap() int       { return c.ContextProductCap }

// IsGenerationEnabled reports whether a plausible API key is configured:
// "sk-" prefix and a minimum length. Placeholder values stay disabled.
func (c *Config) IsGenerationEnabled() bool {
	return strings.HasPrefix(c.OpenAIAPIKey, "sk-") && len(c.OpenAIAPIKey) > 25
}

// GotenbergConfig implementation
func (c *Config) GetGotenbergURL() string      { return c.GotenbergURL }
func (c *Config) GetGotenbergUsername() string { return c.GotenbergUsername }
func (c *Config) GetGotenbergPassword() string { return c.GotenbergPassword }
func (c *Config) IsGotenbergEnabled() bool     { return c.GotenbergURL != "" }

// AdminConfig implementation
func (c *Config) GetAdminToken() string { return c.AdminToken }

// CompanyConfig implementation
func (c *Config) GetCompanyName() string       { return c.CompanyName }
func (c *Config) GetCompanyAddress() string    { return c.CompanyAddress }
func (c *Config) GetCompanyPhone() string      { return c.CompanyPhone }
func (c *Config) GetCompanyWebsite() string    { return c.CompanyWebsite }
func (c *Config) GetCompanyBranches() []string { return c.CompanyBranches }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",")
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		PublicDir:           getEnv("PUBLIC_DIR", "public"),
		TrustedProxies:      splitList(getEnv("TRUSTED_PROXIES", ""), ","),
		CatalogPath:         getEnv("CATALOG_PATH", "productos_completos.json"),
		CatalogTTL:          mustDuration(getEnv("CATALOG_TTL", "10m")),
		CatalogFetchTimeout: mustDuration(getEnv("CATALOG_FETCH_TIMEOUT", "10s")),
		CatalogWatchEnabled: strings.EqualFold(getEnv("CATALOG_WATCH", "true"), "true"),
		SessionTTL:          mustDuration(getEnv("SESSION_TTL", "30m")),
		HistoryWindow:       mustInt(getEnv("HISTORY_WINDOW", "10")),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4-turbo"),
		OpenAITimeout:       mustDuration(getEnv("OPENAI_TIMEOUT", "30s")),
		ContextProductCap:   mustInt(getEnv("CONTEXT_PRODUCT_CAP", "50")),
		GotenbergURL:        getEnv("GOTENBERG_URL", ""),
		GotenbergUsername:   getEnv("GOTENBERG_USERNAME", ""),
		GotenbergPassword:   getEnv("GOTENBERG_PASSWORD", ""),
		AdminToken:          getEnv("ADMIN_TOKEN", ""),
		CompanyName:         getEnv("COMPANY_NAME", "UP-CONS"),
		CompanyAddress:      getEnv("COMPANY_ADDRESS", "Av. Principal 123, Ciudad, País"),
		CompanyPhone:        getEnv("COMPANY_PHONE", "+593999999999"),
		CompanyWebsite:      getEnv("COMPANY_WEBSITE", "https://upcons.example.com"),
		CompanyBranches:     splitList(getEnv("COMPANY_BRANCHES", "Matriz - Ciudad|Sucursal Norte - Ciudad|Sucursal Sur - Ciudad"), "|"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitList(value, sep string) []string {
	parts := strings.Split(value, sep)
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
