package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/repository"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/util"
)

type HealthHandler struct {
	repo   *repository.DiagnosticsRepository
	logger *zap.Logger
}

func NewHealthHandler(repo *repository.DiagnosticsRepository, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{repo: repo, logger: logger}
}

// Health 返回各表行数和存储连通状态
func (h *HealthHandler) Health(c *gin.Context) {
	counts, err := h.repo.CountAll(c.Request.Context())
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Error("Health check failed",
			zap.String("error_type", util.ClassifyStoreError(err)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "ERROR",
			"timestamp": now,
			"message":   "Database connection failed",
			"database":  "Disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": now,
		"message":   "API is working",
		"database":  "Connected",
		"data":      counts,
	})
}
