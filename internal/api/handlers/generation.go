package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/harmony-api/internal/composer"
	"github.com/Conceptual-Machines/harmony-api/internal/logger"
	"github.com/Conceptual-Machines/harmony-api/internal/models"
	"github.com/Conceptual-Machines/harmony-api/internal/presets"
	"github.com/Conceptual-Machines/harmony-api/internal/services"
)

type GenerationHandler struct {
	genService *services.GenerationService
}

func NewGenerationHandler(genService *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{genService: genService}
}

// Generate runs one progression search
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Preset != "" {
		c.Set("preset", req.Preset)
	}

	ctx := services.WithRequestID(c.Request.Context(), c.GetString("request_id"))
	resp, err := h.genService.Generate(ctx, req)
	if err != nil {
		status := generationStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Generation failed", err, logger.WithContext(c))
		}
		c.JSON(status, gin.H{"error": err.Error(), "request_id": c.GetString("request_id")})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func generationStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, presets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, composer.ErrNoSolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	default:
		return http.StatusInternalServerError
	}
}

// ListPresets returns the preset catalog
func (h *GenerationHandler) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": h.genService.Presets()})
}

// RunStats aggregates the run log over ?window= (a Go duration, default 24h)
func (h *GenerationHandler) RunStats(c *gin.Context) {
	window := defaultStatsWindow
	if raw := c.Query("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 || d > maxStatsWindow {
			c.JSON(http.StatusBadRequest, gin.H{"error": "window must be a positive duration up to 720h"})
			return
		}
		window = d
	}

	stats, err := h.genService.RunStats(c.Request.Context(), time.Now().Add(-window))
	if err != nil {
		logger.Error("Failed to load run stats", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run stats"})
		return
	}
	if stats == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Run log is not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"window": window.String(), "presets": stats})
}
