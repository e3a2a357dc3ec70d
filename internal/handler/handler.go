package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	webhook http.Handler
	log     *zap.Logger
}

// NewHandler builds the HTTP handlers. webhook is nil when the bot polls.
func NewHandler(webhook http.Handler, log *zap.Logger) *Handler {
	return &Handler{
		webhook: webhook,
		log:     log,
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (h *Handler) Webhook(c *gin.Context) {
	if h.webhook == nil {
		c.Status(http.StatusNotFound)
		return
	}

	h.log.Debug("Webhook update received",
		zap.String("remote", c.ClientIP()),
		zap.Int64("content_length", c.Request.ContentLength))

	h.webhook.ServeHTTP(c.Writer, c.Request)
}
