package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"construbot_backend/internal/catalog/cache"
	"construbot_backend/internal/catalog/transport"
	"construbot_backend/platform/apperr"
	"construbot_backend/platform/httpkit"
)

// Handler handles HTTP requests for the catalog cache.
type Handler struct {
	cache *cache.Cache
}

// New creates a new catalog handler.
func New(c *cache.Cache) *Handler {
	return &Handler{cache: c}
}

// Health reports cache item count and snapshot age.
// GET /health
func (h *Handler) Health(c *gin.Context) {
	items, age := h.cache.Stats()
	resp := transport.HealthResponse{Status: "ok", ProductsCached: items}
	if age != nil {
		ms := age.Milliseconds()
		resp.CacheAgeMs = &ms
	}
	httpkit.OK(c, resp)
}

// Refresh performs a blocking catalog fetch for operators.
// POST /admin/refresh-products
func (h *Handler) Refresh(c *gin.Context) {
	before, after, err := h.cache.ForceRefresh(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindUpstream, "catalog refresh failed", err).WithDetails(err.Error()))
		return
	}
	httpkit.OK(c, transport.RefreshResponse{
		OK:        true,
		Before:    before,
		After:     after,
		FetchedAt: time.Now().UnixMilli(),
	})
}
