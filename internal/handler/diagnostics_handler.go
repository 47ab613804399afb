package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/internal/repository"
)

// OverviewService 组装项目树和写入示例数据
type OverviewService interface {
	Overview(ctx context.Context) (*model.Overview, error)
	Seed(ctx context.Context) (*model.SeedResult, error)
	Invalidate(ctx context.Context)
}

// DiagnosticsHandler /api/test/* 诊断接口，仅用于手工测试
type DiagnosticsHandler struct {
	repo     *repository.DiagnosticsRepository
	overview OverviewService
	logger   *zap.Logger
}

func NewDiagnosticsHandler(repo *repository.DiagnosticsRepository, overview OverviewService, logger *zap.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{repo: repo, overview: overview, logger: logger}
}

func success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"status":  "SUCCESS",
		"message": message,
		"data":    data,
	})
}

func (h *DiagnosticsHandler) Connection(c *gin.Context) {
	info, err := h.repo.ConnectionInfo(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "TestConnection", err)
		return
	}
	success(c, http.StatusOK, "Database connection test successful", info)
}

func (h *DiagnosticsHandler) Tables(c *gin.Context) {
	tables, err := h.repo.Columns(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "TestTables", err)
		return
	}
	success(c, http.StatusOK, "Database schema information", gin.H{
		"tables":     tables,
		"tableCount": len(tables),
	})
}

func (h *DiagnosticsHandler) SampleData(c *gin.Context) {
	res, err := h.overview.Seed(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "TestSampleData", err)
		return
	}
	success(c, http.StatusCreated, "Sample data created successfully", res)
}

func (h *DiagnosticsHandler) AllData(c *gin.Context) {
	tree, err := h.overview.Overview(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "TestAllData", err)
		return
	}
	success(c, http.StatusOK, "All data retrieved with relationships", tree)
}

func (h *DiagnosticsHandler) ClearData(c *gin.Context) {
	res, err := h.repo.ClearAll(c.Request.Context())
	// 删除可能已部分执行
	h.overview.Invalidate(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "TestClearData", err)
		return
	}
	success(c, http.StatusOK, "All data cleared successfully", res)
}

func (h *DiagnosticsHandler) Performance(c *gin.Context) {
	res, err := h.repo.MeasurePerformance(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "TestPerformance", err)
		return
	}
	success(c, http.StatusOK, "Database performance test completed", gin.H{
		"executionTimeMs": res.ElapsedMillis,
		"queriesExecuted": 5,
		"results":         res,
	})
}
