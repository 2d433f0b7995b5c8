package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/datalith/predictit-etl/internal/load"
	"github.com/datalith/predictit-etl/internal/stage"
	"github.com/datalith/predictit-etl/internal/warehouse"
)

const warehouseTimeout = 20 * time.Minute

// NewLoadCmd creates the load command, which defines the external stage and
// copies landed files into the raw table.
func NewLoadCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Define the external stage and load landed files into the raw table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	return cmd
}

func runLoad(configPath string) error {
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

	stager := stage.NewManager(wh, cfg.Snowflake.Database, cfg.Snowflake.Schema, logger)
	if err := stager.EnsureStage(ctx, stageSpec(cfg)); err != nil {
		return fmt.Errorf("defining stage: %w", err)
	}

	loader := load.NewLoader(wh, cfg.Snowflake.Database, cfg.Snowflake.Schema, cfg.Pipeline.StageName, logger)
	res, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	color.Green("Loaded %d staged files into %d raw rows", res.StagingRows, res.RawRows)
	return nil
}
