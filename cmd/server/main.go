package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"projecttracker/internal/config"
	"projecttracker/internal/httpserver"
	"projecttracker/internal/service/overview"
	"projecttracker/pkg/db"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/otel"
	"projecttracker/pkg/redis"
)

const serviceName = "projecttracker"

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	log.Info("Starting projecttracker...",
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("port", cfg.Server.Port),
		zap.Bool("diagnostics", cfg.Diagnostics.Enabled),
	)

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		SampleRatio:    cfg.Otel.SampleRatio,
		Enabled:        cfg.Otel.Enabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer shutdownTracing()

	// Store
	log.Info("Initializing store...")
	store, err := db.Open(cfg.Store, cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	schemaCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = store.EnsureSchema(schemaCtx)
	cancel()
	if err != nil {
		log.Fatal("Failed to ensure schema", zap.Error(err))
	}
	log.Info("Store ready", zap.String("dialect", string(store.Dialect())))

	// 项目树缓存（可选）
	var cache overview.TreeCache
	if cfg.Redis.Enabled {
		rdb, err := redis.NewRedisClient(cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, overview cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = overview.NewRedisCache(rdb, cfg.Redis.TTL, overview.WithBreaker(overview.NewCacheBreaker(log)))
		}
	}

	gin.SetMode(gin.ReleaseMode)
	handler := httpserver.NewAPI(store, httpserver.APIOptions{
		Cache:       cache,
		Diagnostics: cfg.Diagnostics.Enabled,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down projecttracker gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("projecttracker shutdown complete")
}
