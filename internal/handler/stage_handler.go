package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/internal/repository"
	"projecttracker/pkg/metrics"
)

type StageHandler struct {
	repo   *repository.StageRepository
	cache  Invalidator
	logger *zap.Logger
}

func NewStageHandler(repo *repository.StageRepository, cache Invalidator, logger *zap.Logger) *StageHandler {
	return &StageHandler{repo: repo, cache: orNoop(cache), logger: logger}
}

// ListStages 支持 ?projectId= 精确过滤
func (h *StageHandler) ListStages(c *gin.Context) {
	projectID := c.Query("projectId")
	h.logger.Debug("ListStages request received", zap.String("project_id", projectID))

	stages, err := h.repo.List(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, h.logger, "ListStages", err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

func (h *StageHandler) CreateStage(c *gin.Context) {
	h.logger.Info("CreateStage request received", zap.String("client_ip", c.ClientIP()))

	var in model.StageInput
	if _, err := bindBody(c, &in); err != nil {
		writeError(c, h.logger, "CreateStage", err)
		return
	}

	stage, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, "CreateStage", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("stage", "create")
	h.logger.Info("CreateStage: success",
		zap.String("stage_id", stage.ID),
		zap.String("project_id", stage.ProjectID),
	)
	c.JSON(http.StatusCreated, stage)
}

// UpdateStage 全量更新 name 和 description，请求体中的 projectId 被忽略
func (h *StageHandler) UpdateStage(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("UpdateStage request received", zap.String("stage_id", id))

	var req struct {
		Name        string `json:"name" binding:"required,notblank"`
		Description string `json:"description"`
	}
	if _, err := bindBody(c, &req); err != nil {
		writeError(c, h.logger, "UpdateStage", err)
		return
	}

	stage, err := h.repo.Update(c.Request.Context(), id, model.StageInput{Name: req.Name, Description: req.Description})
	if err != nil {
		writeError(c, h.logger, "UpdateStage", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("stage", "update")
	c.JSON(http.StatusOK, stage)
}

func (h *StageHandler) DeleteStage(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("DeleteStage request received", zap.String("stage_id", id))

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, "DeleteStage", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("stage", "delete")
	c.Status(http.StatusNoContent)
}
