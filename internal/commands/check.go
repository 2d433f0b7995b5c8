package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/datalith/predictit-etl/internal/quality"
	"github.com/datalith/predictit-etl/internal/warehouse"
)

// NewCheckCmd creates the check command, which runs the post-load quality
// gate on its own.
func NewCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the data quality checks against the raw table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	return cmd
}

func runCheck(configPath string) error {
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

	gate := quality.NewGate(wh, cfg.Snowflake.Database, cfg.Snowflake.Schema, logger)
	report, err := gate.Check(ctx)
	if report != nil {
		fmt.Printf("rows: %d  null keys: %d  sampled: %d\n",
			report.RowCount, report.NullKeyRows, report.SampleRows)
	}
	if err != nil {
		color.Red("Quality gate failed: %v", err)
		return err
	}
	color.Green("Quality gate passed")
	return nil
}
