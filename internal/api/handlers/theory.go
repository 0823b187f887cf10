package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/harmony-api/internal/logger"
	"github.com/Conceptual-Machines/harmony-api/internal/models"
	"github.com/Conceptual-Machines/harmony-api/internal/services"
)

type TheoryHandler struct {
	theoryService *services.TheoryService
}

func NewTheoryHandler(theoryService *services.TheoryService) *TheoryHandler {
	return &TheoryHandler{theoryService: theoryService}
}

type analyzeFunc func(models.TheoryRequest) (*models.Analysis, error)

// analyze binds the shared request body, runs fn and writes
// {"ok": true, "grouped": ...}. A query that resolves to no hit is not an
// HTTP error; it answers ok=false.
func (h *TheoryHandler) analyze(c *gin.Context, fn analyzeFunc) {
	var req models.TheoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.TheoryResponse{Error: err.Error()})
		return
	}

	analysis, err := fn(req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, models.TheoryResponse{OK: true, Grouped: analysis})
	case errors.Is(err, services.ErrInvalidQuery):
		c.JSON(http.StatusBadRequest, models.TheoryResponse{Error: err.Error()})
	case errors.Is(err, services.ErrNoHits):
		c.JSON(http.StatusOK, models.TheoryResponse{Error: err.Error()})
	default:
		logger.Error("Theory analysis failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, models.TheoryResponse{Error: "Internal server error"})
	}
}

func (h *TheoryHandler) Chord(c *gin.Context) { h.analyze(c, h.theoryService.Chord) }
func (h *TheoryHandler) ChordInMode(c *gin.Context) { h.analyze(c, h.theoryService.ChordInMode) }
func (h *TheoryHandler) ModeInKey(c *gin.Context) { h.analyze(c, h.theoryService.ModeInKey) }
func (h *TheoryHandler) ChordInKey(c *gin.Context) { h.analyze(c, h.theoryService.ChordInKey) }
