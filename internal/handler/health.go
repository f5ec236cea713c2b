package handler

import (
	"net/http"

	"github.com/CageChen/nbhub/internal/notebook"
	"github.com/gin-gonic/gin"
)

// HealthHandler serves the liveness endpoints. Neither endpoint fails when
// the notebook root is missing.
type HealthHandler struct {
	store *notebook.Store
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store *notebook.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Info returns the service banner
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":       "Notebook Viewer API",
		"status":        "running",
		"notebooks_dir": h.store.Root(),
	})
}

// Health reports whether the notebook root is reachable
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"notebooks_directory": h.store.Root(),
		"directory_exists":    h.store.Exists(),
	})
}
