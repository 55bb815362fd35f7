package cmd

import (
	"fmt"

	"github.com/fixora/fixora-service/internal/config"
	"github.com/fixora/fixora-service/internal/observability"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "fixora-service",
	Short: "Fixora reports API: reports, feedback workflow, notifications, uploads",
	RunE:  runAPI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig reads and validates configuration and builds the logger.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	return cfg, observability.NewLogger(cfg.LogLevel, cfg.AppEnv), nil
}
