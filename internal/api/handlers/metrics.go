package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/harmony-api/internal/theory"
)

const bytesToMB = 1024 * 1024

// MetricsHandler serves a JSON snapshot of process state. Counters and
// histograms live on /metrics.
type MetricsHandler struct {
	startTime time.Time
	version   string
}

func NewMetricsHandler(version string) *MetricsHandler {
	return &MetricsHandler{startTime: time.Now(), version: version}
}

type MetricsResponse struct {
	Status      string             `json:"status"`
	Version     string             `json:"version"`
	StartTime   string             `json:"start_time"`
	Timestamp   string             `json:"timestamp"`
	Uptime      string             `json:"uptime"`
	System      SystemMetrics      `json:"system"`
	TheoryCache TheoryCacheMetrics `json:"theory_cache"`
	API         map[string]any     `json:"api"`
}

type SystemMetrics struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	HeapAllocMB  uint64 `json:"heap_alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	NumGC        uint32 `json:"num_gc"`
}

// TheoryCacheMetrics counts the interned modes, keys and chords
type TheoryCacheMetrics struct {
	Modes  int `json:"modes"`
	Keys   int `json:"keys"`
	Chords int `json:"chords"`
}

// formatUptime renders d as 1h4m0.00s, 2m3.00s or 1.50s
func formatUptime(d time.Duration) string {
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute).Seconds()
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%.2fs", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%.2fs", m, s)
	default:
		return fmt.Sprintf("%.2fs", s)
	}
}

func readSystemMetrics() SystemMetrics {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return SystemMetrics{
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		HeapAllocMB:  mem.HeapAlloc / bytesToMB,
		TotalAllocMB: mem.TotalAlloc / bytesToMB,
		NumGC:        mem.NumGC,
	}
}

func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	modes, keys, chords := theory.CacheStats()
	now := time.Now()

	c.JSON(http.StatusOK, MetricsResponse{
		Status:      "healthy",
		Version:     h.version,
		StartTime:   h.startTime.UTC().Format(time.RFC3339),
		Timestamp:   now.UTC().Format(time.RFC3339),
		Uptime:      formatUptime(now.Sub(h.startTime)),
		System:      readSystemMetrics(),
		TheoryCache: TheoryCacheMetrics{Modes: modes, Keys: keys, Chords: chords},
		API: map[string]any{
			"version":    "1.0.0",
			"prometheus": "/metrics",
		},
	})
}
