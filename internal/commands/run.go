package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/datalith/predictit-etl/internal/pipeline"
)

const runTimeout = 30 * time.Minute

// NewRunCmd creates the run command, which executes one full pipeline run.
func NewRunCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: extract, upload, stage, load, transform, check",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(configPath, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config YAML (optional; env vars fill the gaps)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func runPipeline(configPath string, verbose bool) error {
	logger := newLogger(verbose)
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	driver, cleanup, err := buildDriver(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	res := driver.Run(ctx)
	printRunResult(res)
	if res.Err != nil {
		return fmt.Errorf("run %s failed: %w", res.RunID, res.Err)
	}
	return nil
}

func printRunResult(res *pipeline.Result) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	bold.Printf("Run %s\n", res.RunID)
	for _, st := range res.Stages {
		if st.Error != "" {
			red.Printf("  ✗ %-10s %s (%s)\n", st.Name, st.Error, st.Duration.Round(time.Millisecond))
			continue
		}
		green.Printf("  ✓ %-10s %s\n", st.Name, st.Duration.Round(time.Millisecond))
	}
	if res.Status == pipeline.StatusSucceeded {
		green.Printf("Succeeded: %d rows in raw, landed at %s\n", res.RawRows, res.StorageKey)
	} else {
		red.Printf("Failed after %s\n", res.CompletedAt.Sub(res.StartedAt).Round(time.Millisecond))
	}
}
