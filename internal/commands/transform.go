package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/datalith/predictit-etl/internal/transform"
	"github.com/datalith/predictit-etl/internal/warehouse"
)

// NewTransformCmd creates the transform command, which rebuilds the
// analytics tables from whatever is currently in the raw table.
func NewTransformCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Rebuild the analytics tables from the raw table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	return cmd
}

func runTransform(configPath string) error {
	logger := newLogger(false)
	ctx, cancel := context.WithTimeout(context.Background(), warehouseTimeout)
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSnowflake(); err != nil {
		return err
	}

	wh, err := warehouse.NewClient(cfg.Snowflake, logger)
	if err != nil {
		return fmt.Errorf("creating warehouse client: %w", err)
	}

	runner := transform.NewRunner(wh, cfg.Snowflake.Database, cfg.Snowflake.Schema, cfg.Snowflake.AnalyticsSchema, logger)
	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("transform failed: %w", err)
	}
	color.Green("Rebuilt MARKET_SUMMARY, CONTRACT_DETAILS and merged DAILY_MARKET_METRICS")
	return nil
}
