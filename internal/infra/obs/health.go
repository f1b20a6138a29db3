package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers serves /livez and /readyz. Ready reports whether the
// backing store (Mongo when configured) is reachable; nil means the
// in-memory store, which is always ready.
type HealthHandlers struct {
	Ready func() error
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.Status(http.StatusOK)
}
