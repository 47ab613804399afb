package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	pkgconfig "projecttracker/pkg/config"
)

type DiagnosticsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	Server      pkgconfig.ServerConfig `yaml:"server"`
	Store       pkgconfig.StoreConfig  `yaml:"store"`
	DB          pkgconfig.DBConfig     `yaml:"db"`
	Redis       pkgconfig.RedisConfig  `yaml:"redis"`
	Otel        pkgconfig.OtelConfig   `yaml:"otel"`
	Log         pkgconfig.LogConfig    `yaml:"log"`
	Diagnostics DiagnosticsConfig      `yaml:"diagnostics"`
}

// Default 本地开发的默认配置：SQLite 文件 + 5000 端口
func Default() Config {
	return Config{
		Server: pkgconfig.ServerConfig{
			Port:         "5000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Store: pkgconfig.StoreConfig{
			Driver:     "sqlite",
			SQLitePath: "projecttracker.db",
		},
		DB: pkgconfig.DBConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "postgres",
			Name:               "projecttracker",
			SSLMode:            "disable",
			MaxConns:           10,
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		Redis: pkgconfig.RedisConfig{
			Addr: "localhost:6379",
			TTL:  time.Minute,
		},
		Otel: pkgconfig.OtelConfig{
			Endpoint:    "localhost:4317",
			SampleRatio: 1,
		},
		Log:         pkgconfig.LogConfig{Level: "info"},
		Diagnostics: DiagnosticsConfig{Enabled: true},
	}
}

// Load 读取 dir 下的分层配置文件，文件不存在时使用默认值，最后应用环境变量覆盖
func Load(dir string) (*Config, error) {
	cfg := Default()

	err := pkgconfig.LoadLayered(dir, pkgconfig.GetConfigEnv(), &cfg)
	if err != nil && !errors.Is(err, pkgconfig.ErrNoConfigFile) {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 环境变量覆盖（生产环境使用）
	overrideFromEnv(&cfg)

	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideStoreFromEnv(&cfg.Store)
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideOtelFromEnv(&cfg.Otel)
	pkgconfig.OverrideLogFromEnv(&cfg.Log)

	if enabled := os.Getenv("DIAGNOSTICS_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			cfg.Diagnostics.Enabled = b
		}
	}
}
