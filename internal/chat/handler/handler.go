// Package handler exposes the conversational endpoint.
package handler

import (
	"github.com/gin-gonic/gin"

	"construbot_backend/internal/chat/service"
	"construbot_backend/internal/chat/transport"
	"construbot_backend/platform/apperr"
	"construbot_backend/platform/httpkit"
	"construbot_backend/platform/validator"
)

// Handler handles HTTP requests for the chat module.
type Handler struct {
	service  *service.Service
	validate *validator.Validator
}

// New creates a new chat handler.
func New(svc *service.Service, v *validator.Validator) *Handler {
	return &Handler{service: svc, validate: v}
}

// Chat handles one conversational turn. The client IP is the opaque session
// key; the store scopes all state to it for the TTL window.
// POST /chat
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.Validation("El mensaje no puede estar vacío."))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("El mensaje no puede estar vacío."))
		return
	}

	reply := h.service.Respond(c.Request.Context(), c.ClientIP(), req.Message)
	httpkit.OK(c, transport.ChatResponse{Reply: reply})
}
