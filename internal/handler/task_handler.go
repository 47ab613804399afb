package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/internal/repository"
	"projecttracker/pkg/apperr"
	"projecttracker/pkg/metrics"
)

type TaskHandler struct {
	repo   *repository.TaskRepository
	cache  Invalidator
	logger *zap.Logger
}

func NewTaskHandler(repo *repository.TaskRepository, cache Invalidator, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{repo: repo, cache: orNoop(cache), logger: logger}
}

// ListTasks 支持 ?stageId= 精确过滤
func (h *TaskHandler) ListTasks(c *gin.Context) {
	stageID := c.Query("stageId")
	h.logger.Debug("ListTasks request received", zap.String("stage_id", stageID))

	tasks, err := h.repo.List(c.Request.Context(), stageID)
	if err != nil {
		writeError(c, h.logger, "ListTasks", err)
		return
	}

	h.logger.Debug("ListTasks: success", zap.Int("task_count", len(tasks)))
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	h.logger.Info("CreateTask request received", zap.String("client_ip", c.ClientIP()))

	var in model.TaskInput
	if _, err := bindBody(c, &in); err != nil {
		writeError(c, h.logger, "CreateTask", err)
		return
	}

	task, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, "CreateTask", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("task", "create")
	h.logger.Info("CreateTask: success",
		zap.String("task_id", task.ID),
		zap.String("stage_id", task.StageID),
	)
	c.JSON(http.StatusCreated, task)
}

// UpdateTask 部分更新，只改写请求体中出现的字段
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("UpdateTask request received", zap.String("task_id", id))

	var patch model.TaskPatch
	empty, err := bindBody(c, &patch)
	if err != nil {
		writeError(c, h.logger, "UpdateTask", err)
		return
	}
	if empty || patch.IsEmpty() {
		writeError(c, h.logger, "UpdateTask", apperr.NoFieldsToUpdate())
		return
	}
	if msg := patch.Validate(); msg != "" {
		writeError(c, h.logger, "UpdateTask", &apperr.Error{Code: apperr.CodeValidationFailed, Message: msg})
		return
	}

	task, err := h.repo.Update(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.logger, "UpdateTask", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("task", "update")
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("DeleteTask request received", zap.String("task_id", id))

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, "DeleteTask", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("task", "delete")
	c.Status(http.StatusNoContent)
}
