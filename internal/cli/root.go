// Package cli 实现 trackctl 命令行工具
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"projecttracker/internal/client"
	"projecttracker/pkg/logger"
)

const (
	keyAPIURL  = "api_url"
	keyLogFile = "log_file"
)

var (
	cfgFile string
	jsonOut bool
)

// Execute 运行根命令
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "trackctl",
		Short: "Project tracker client",
		Long: `trackctl talks to the project tracker REST API.

Projects contain stages, stages contain tasks.

Quick start:
  trackctl seed                          Load sample data
  trackctl projects list                 List projects
  trackctl tree                          Print every project as a tree
  trackctl board                         Open the interactive board`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trackctl.yaml)")
	root.PersistentFlags().String("api-url", client.DefaultBaseURL, "base URL of the API")
	root.PersistentFlags().String("log-file", "", "write client logs to this file")
	root.PersistentFlags().BoolVar(&jsonOut, "json", false, "output as JSON")

	root.AddCommand(newProjectsCmd())
	root.AddCommand(newStagesCmd())
	root.AddCommand(newTasksCmd())
	root.AddCommand(newTreeCmd())
	root.AddCommand(newBoardCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newClearCmd())
	root.AddCommand(newHealthCmd())
	return root
}

// initConfig 读取配置文件和 TRACKCTL_* 环境变量，命令行参数优先
func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("$HOME")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".trackctl")
	}

	viper.SetEnvPrefix("TRACKCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	flags := cmd.Root().PersistentFlags()
	if err := viper.BindPFlag(keyAPIURL, flags.Lookup("api-url")); err != nil {
		return err
	}
	if err := viper.BindPFlag(keyLogFile, flags.Lookup("log-file")); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		// 默认位置没有配置文件时忽略
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func newClient() *client.Client {
	return client.New(viper.GetString(keyAPIURL))
}

// newLogger 未指定 --log-file 时不输出日志
func newLogger() *zap.Logger {
	path := viper.GetString(keyLogFile)
	if path == "" {
		return zap.NewNop()
	}
	l, err := logger.NewFileLogger("debug", path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open log file %s: %v\n", path, err)
		return zap.NewNop()
	}
	return l
}
