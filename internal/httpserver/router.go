package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"projecttracker/internal/handler"
	"projecttracker/pkg/otel"
)

// Pinger readyz 使用的存储连通性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers 路由依赖的全部 handler；Diagnostics 为 nil 时不注册 /api/test
type Handlers struct {
	Projects    *handler.ProjectHandler
	Stages      *handler.StageHandler
	Tasks       *handler.TaskHandler
	Health      *handler.HealthHandler
	Diagnostics *handler.DiagnosticsHandler
}

// NewRouter 创建 gin engine 并包上 CORS
func NewRouter(h Handlers, db Pinger, logger *zap.Logger) http.Handler {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(traceMiddleware())
	r.Use(otel.GinMiddleware())
	r.Use(requestLogMiddleware(logger))
	r.Use(metricsMiddleware())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health.Health)

		api.GET("/projects", h.Projects.ListProjects)
		api.POST("/projects", h.Projects.CreateProject)
		api.PUT("/projects/:id", h.Projects.UpdateProject)
		api.DELETE("/projects/:id", h.Projects.DeleteProject)

		api.GET("/stages", h.Stages.ListStages)
		api.POST("/stages", h.Stages.CreateStage)
		api.PUT("/stages/:id", h.Stages.UpdateStage)
		api.DELETE("/stages/:id", h.Stages.DeleteStage)

		api.GET("/tasks", h.Tasks.ListTasks)
		api.POST("/tasks", h.Tasks.CreateTask)
		api.PUT("/tasks/:id", h.Tasks.UpdateTask)
		api.DELETE("/tasks/:id", h.Tasks.DeleteTask)
	}

	if h.Diagnostics != nil {
		test := api.Group("/test")
		test.GET("/connection", h.Diagnostics.Connection)
		test.GET("/tables", h.Diagnostics.Tables)
		test.POST("/sample-data", h.Diagnostics.SampleData)
		test.GET("/all-data", h.Diagnostics.AllData)
		test.DELETE("/clear-data", h.Diagnostics.ClearData)
		test.GET("/performance", h.Diagnostics.Performance)
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			"X-Trace-ID",
			"X-Request-ID",
		},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	})(r)
}
