package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoConfigFile 基础配置文件不存在
var ErrNoConfigFile = errors.New("config file not found")

// LoadLayered 加载分层配置并解码到 out
// 1. 加载 <dir>/config.yaml
// 2. 加载 <dir>/config.<env>.yaml（如果存在），覆盖基础配置
// 3. 替换 ${VAR} 占位符（系统环境变量）
// out 中已有的字段作为默认值保留
func LoadLayered(dir, env string, out any) error {
	if dir == "" {
		dir = "."
	}

	base, err := loadYAMLFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNoConfigFile
		}
		return fmt.Errorf("failed to load config.yaml: %w", err)
	}

	merged := base
	if env != "" && env != "base" {
		envFile := filepath.Join(dir, fmt.Sprintf("config.%s.yaml", env))
		if _, err := os.Stat(envFile); err == nil {
			envConfig, err := loadYAMLFile(envFile)
			if err != nil {
				return fmt.Errorf("failed to load config.%s.yaml: %w", env, err)
			}
			merged = mergeMaps(base, envConfig)
		}
	}

	merged = substituteEnvVars(merged, os.LookupEnv)

	raw, err := yaml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to re-encode merged config: %w", err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode merged config: %w", err)
	}
	return nil
}

// loadYAMLFile 加载 YAML 文件
func loadYAMLFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := make(map[string]interface{})
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return config, nil
}

// mergeMaps 合并两个 map，dst 会被 src 覆盖
func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for k, v := range dst {
		result[k] = v
	}

	for k, v := range src {
		if dstMap, ok := result[k].(map[string]interface{}); ok {
			if srcMap, ok := v.(map[string]interface{}); ok {
				// 递归合并嵌套 map
				result[k] = mergeMaps(dstMap, srcMap)
				continue
			}
		}
		result[k] = v
	}

	return result
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// substituteEnvVars 替换配置中的环境变量占位符 ${VAR_NAME}
// 未设置的变量保留原样
func substituteEnvVars(config map[string]interface{}, lookup func(string) (string, bool)) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range config {
		switch val := v.(type) {
		case string:
			result[k] = substituteString(val, lookup)
		case map[string]interface{}:
			result[k] = substituteEnvVars(val, lookup)
		default:
			result[k] = v
		}
	}
	return result
}

func substituteString(s string, lookup func(string) (string, bool)) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if value, ok := lookup(name); ok {
			return value
		}
		return m
	})
}

// GetEnv 获取环境变量，如果未设置则返回默认值
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetConfigEnv 获取配置环境（从环境变量 CONFIG_ENV，默认为 local）
func GetConfigEnv() string {
	return GetEnv("CONFIG_ENV", "local")
}
