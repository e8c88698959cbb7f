package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status is the body of both probe endpoints.
type Status struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Handler manages health check endpoints
type Handler struct {
	provider string
	readyFn  func() error
}

// NewHandler creates a health handler for the named geo provider. readyFn may
// be nil for providers that hold no state, in which case /ready always succeeds.
func NewHandler(provider string, readyFn func() error) *Handler {
	return &Handler{provider: provider, readyFn: readyFn}
}

// Health is the liveness probe endpoint. It never inspects the request.
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, Status{Status: "ok"})
}

// Ready reports whether the geo provider can serve lookups.
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	if h.readyFn != nil {
		if err := h.readyFn(); err != nil {
			c.JSON(http.StatusServiceUnavailable, Status{
				Status:   "not ready",
				Provider: h.provider,
				Error:    err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, Status{Status: "ready", Provider: h.provider})
}
