package health

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mktu/recipe-app/internal/infrastructure/config"
	"github.com/mktu/recipe-app/internal/pkg/common"
)

// Pinger is the database connectivity probe.
type Pinger interface {
	Ping() error
}

// Handler serves the health endpoints.
type Handler struct {
	cfg       *config.Config
	store     Pinger
	startTime time.Time
}

// NewHandler creates the health handler.
func NewHandler(cfg *config.Config, store Pinger) *Handler {
	return &Handler{
		cfg:       cfg,
		store:     store,
		startTime: time.Now(),
	}
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime"`
	Database  string                 `json:"database"`
}

// HealthCheck reports overall service health including database
// connectivity.
func (h *Handler) HealthCheck(c *gin.Context) {
	dbStatus := "up"
	status := "healthy"
	code := http.StatusOK

	if err := h.store.Ping(); err != nil {
		common.LogError("database health check failed", zap.Error(err))
		dbStatus = "down"
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   h.cfg.App.Version,
		Uptime:    time.Since(h.startTime).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
		Database: dbStatus,
	})
}

// ReadinessCheck reports whether the service can take traffic.
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.store.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck reports whether the process is alive.
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
