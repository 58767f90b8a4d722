package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chack-ai/chack-tools/pkg/core"
	"github.com/chack-ai/chack-tools/pkg/logging"
)

type cliState struct {
	configPath string
	logLevel   string
	logFormat  string

	config *core.ToolsConfig
	file   *fileConfig
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	state := &cliState{}

	root := &cobra.Command{
		Use:           "chack-tools",
		Short:         "Research-agent toolset: search engines, sub-agents, local tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config, fc, err := loadConfig(state.configPath)
			if err != nil {
				return err
			}
			if state.logLevel != "" {
				fc.Log.Level = state.logLevel
			}
			if state.logFormat != "" {
				fc.Log.Format = state.logFormat
			}
			logger, err := logging.New(fc.Log.Level, fc.Log.Format)
			if err != nil {
				return err
			}
			state.config = config
			state.file = fc
			state.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if state.logger != nil {
				_ = state.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&state.configPath, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&state.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&state.logFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(newToolsCmd(state))
	root.AddCommand(newSearchCmd(state))
	root.AddCommand(newRunCmd(state))
	return root
}
