// Package handler serves the proforma document endpoints.
package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"construbot_backend/internal/pdf"
	"construbot_backend/internal/proforma/render"
	"construbot_backend/internal/sessions"
	"construbot_backend/platform/logger"
)

// Handler handles HTTP requests for proforma documents. The visitor's quote
// is read from the session keyed by client IP, same as the chat endpoint.
type Handler struct {
	sessions  *sessions.Store
	renderer  *render.Renderer
	gotenberg *pdf.GotenbergClient
	company   string
	log       *logger.Logger
}

// New creates a proforma handler. gotenberg may be nil when no converter is
// configured; the PDF endpoint then answers 501 with a pointer to the HTML
// download.
func New(store *sessions.Store, renderer *render.Renderer, gotenberg *pdf.GotenbergClient, companyName string, log *logger.Logger) *Handler {
	return &Handler{
		sessions:  store,
		renderer:  renderer,
		gotenberg: gotenberg,
		company:   companyName,
		log:       log,
	}
}

// filename builds the download filename from the company name.
func (h *Handler) filename(ext string) string {
	name := strings.ReplaceAll(strings.ToUpper(h.company), " ", "")
	if name == "" {
		name = "PROFORMA"
	}
	return fmt.Sprintf("Proforma-%s.%s", name, ext)
}

// View renders the quote as an HTML document. ?download=1 turns the response
// into an attachment.
// GET /proforma
func (h *Handler) View(c *gin.Context) {
	session := h.sessions.Get(c.ClientIP())
	if len(session.Quote) == 0 {
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte("<h1>No hay productos en la proforma.</h1>"))
		return
	}

	html, err := h.renderer.HTML(session.DisplayName, session.Quote, time.Now())
	if err != nil {
		h.log.Error("proforma render failed", "error", err)
		c.String(http.StatusInternalServerError, "No se pudo generar la proforma.")
		return
	}

	if c.Query("download") == "1" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.filename("html")))
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// PDF converts the same HTML document through Gotenberg and streams the
// result as an attachment.
// GET /proforma.pdf
func (h *Handler) PDF(c *gin.Context) {
	session := h.sessions.Get(c.ClientIP())
	if len(session.Quote) == 0 {
		c.String(http.StatusNotFound, "No hay productos en la proforma.")
		return
	}

	if h.gotenberg == nil {
		c.Data(http.StatusNotImplemented, "text/html; charset=utf-8",
			[]byte(`<h1>Generador PDF no disponible</h1><p>Configura el servicio de conversión en el servidor. Mientras tanto, puedes descargar la versión HTML desde <a href="/proforma?download=1">/proforma?download=1</a>.</p>`))
		return
	}

	html, err := h.renderer.HTML(session.DisplayName, session.Quote, time.Now())
	if err != nil {
		h.log.Error("proforma render failed", "error", err)
		c.String(http.StatusInternalServerError, "No se pudo generar la proforma.")
		return
	}

	result, err := h.gotenberg.ConvertHTML(c.Request.Context(), html, pdf.ProformaOpts())
	if err != nil {
		h.log.Error("proforma pdf conversion failed", "error", err)
		c.String(http.StatusBadGateway, "No se pudo generar el PDF. Puedes descargar la versión HTML desde /proforma?download=1.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.filename("pdf")))
	c.Data(http.StatusOK, "application/pdf", result)
}
