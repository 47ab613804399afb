package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/internal/repository"
	"projecttracker/pkg/metrics"
)

type ProjectHandler struct {
	repo   *repository.ProjectRepository
	cache  Invalidator
	logger *zap.Logger
}

func NewProjectHandler(repo *repository.ProjectRepository, cache Invalidator, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{repo: repo, cache: orNoop(cache), logger: logger}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	h.logger.Debug("ListProjects request received", zap.String("client_ip", c.ClientIP()))

	projects, err := h.repo.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "ListProjects", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	h.logger.Info("CreateProject request received", zap.String("client_ip", c.ClientIP()))

	in, err := h.bindInput(c)
	if err != nil {
		writeError(c, h.logger, "CreateProject", err)
		return
	}

	project, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, "CreateProject", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("project", "create")
	h.logger.Info("CreateProject: success", zap.String("project_id", project.ID))
	c.JSON(http.StatusCreated, project)
}

// UpdateProject 全量更新 name 和 description
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("UpdateProject request received", zap.String("project_id", id))

	in, err := h.bindInput(c)
	if err != nil {
		writeError(c, h.logger, "UpdateProject", err)
		return
	}

	project, err := h.repo.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, h.logger, "UpdateProject", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("project", "update")
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	h.logger.Info("DeleteProject request received", zap.String("project_id", id))

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, "DeleteProject", err)
		return
	}

	h.cache.Invalidate(c.Request.Context())
	metrics.IncrementMutation("project", "delete")
	h.logger.Info("DeleteProject: success", zap.String("project_id", id))
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) bindInput(c *gin.Context) (model.ProjectInput, error) {
	var in model.ProjectInput
	_, err := bindBody(c, &in)
	return in, err
}
