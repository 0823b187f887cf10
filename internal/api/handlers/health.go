package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	presets  int
	database bool
}

// NewHealthHandler reports the preset count and whether the run log is on
func NewHealthHandler(presets int, database bool) *HealthHandler {
	return &HealthHandler{presets: presets, database: database}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.database {
		dbStatus = "enabled"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"presets": h.presets,
		"run_log": gin.H{
			"status": dbStatus,
		},
	})
}
