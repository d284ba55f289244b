package handlers

import (
	"net/http"
	"time"

	"moodtunes/config"
	"moodtunes/internal/utils"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves the health and status endpoints.
type SystemHandler struct {
	cfg       *config.Config
	startTime time.Time
}

// NewSystemHandler creates the system handler.
func NewSystemHandler(cfg *config.Config) *SystemHandler {
	return &SystemHandler{cfg: cfg, startTime: time.Now()}
}

// RegisterRoutes registers the system endpoints.
func (h *SystemHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/", h.Home)
	router.GET("/api/status", h.Status)
}

// Home is the plain-text health check.
func (h *SystemHandler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Backend is working!")
}

// Status reports uptime, enabled stages and system statistics.
func (h *SystemHandler) Status(c *gin.Context) {
	stats := utils.GetSystemStats()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now(),
		"stages": gin.H{
			"emotion_detection": h.cfg.Emotion.Enabled,
			"playlist":          h.cfg.Spotify.Enabled,
			"mqtt":              h.cfg.MQTT.Enabled,
		},
		"system": gin.H{
			"num_cpu":      stats.NumCPU,
			"go_routines":  stats.GoRoutines,
			"cpu_usage":    stats.CPUUsage,
			"memory_alloc": utils.FormatBytes(stats.MemoryAlloc),
			"memory_sys":   utils.FormatBytes(stats.MemorySys),
		},
	})
}
