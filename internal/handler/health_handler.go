// Package handler contains HTTP request handlers.
// In Gin, a handler is any function with signature func(*gin.Context).
// No need for controller classes, just functions grouped by file.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	provider string
	model    string
}

// NewHealthHandler creates a new HealthHandler. The provider and model names
// are reported so operators can see which backend a deployment talks to.
// In Go, constructors are just regular functions prefixed with "New".
func NewHealthHandler(provider, model string) *HealthHandler {
	return &HealthHandler{provider: provider, model: model}
}

// Healthz responds with service status. The method receiver (h *HealthHandler)
// is Go's way of attaching methods to a struct, similar to `self` or `this`.
func (h *HealthHandler) Healthz(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": "company-enricher",
	}
	if h.provider != "" {
		body["provider"] = h.provider
		body["model"] = h.model
	}
	c.JSON(http.StatusOK, body)
}
