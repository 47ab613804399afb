package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"projecttracker/internal/handler"
	"projecttracker/internal/repository"
	"projecttracker/internal/service/overview"
	"projecttracker/pkg/db"
)

// APIOptions 组装 API 时的可选依赖
type APIOptions struct {
	// Cache 为 nil 时不缓存项目树
	Cache       overview.TreeCache
	Diagnostics bool
}

// NewAPI 基于同一个 Store 组装 repository、service、handler 和路由
func NewAPI(store *db.Store, opts APIOptions, logger *zap.Logger) http.Handler {
	projectRepo := repository.NewProjectRepository(store, logger)
	stageRepo := repository.NewStageRepository(store, logger)
	taskRepo := repository.NewTaskRepository(store, logger)
	diagRepo := repository.NewDiagnosticsRepository(store, logger)

	overviewSvc := overview.NewService(projectRepo, stageRepo, taskRepo, logger, overview.WithCache(opts.Cache))

	h := Handlers{
		Projects: handler.NewProjectHandler(projectRepo, overviewSvc, logger),
		Stages:   handler.NewStageHandler(stageRepo, overviewSvc, logger),
		Tasks:    handler.NewTaskHandler(taskRepo, overviewSvc, logger),
		Health:   handler.NewHealthHandler(diagRepo, logger),
	}
	if opts.Diagnostics {
		h.Diagnostics = handler.NewDiagnosticsHandler(diagRepo, overviewSvc, logger)
	}

	return NewRouter(h, store, logger)
}
