package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"sigs.k8s.io/controller-runtime/pkg/healthz"

	"github.com/probelet/probelet-operator/pkg/monitoring"
)

type handlers struct {
	diag  *monitoring.Diagnostics
	ready healthz.Checker
}

// healthz answers liveness: the process is up and serving.
func (h *handlers) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, "healthy")
}

func (h *handlers) readyz(c *gin.Context) {
	if err := h.ready(c.Request); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *handlers) diagnostics(c *gin.Context) {
	if h.diag == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "diagnostics not initialized"})
		return
	}
	c.JSON(http.StatusOK, h.diag.Snapshot())
}
