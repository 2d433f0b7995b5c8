package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/datalith/predictit-etl/internal/pipeline"
	"github.com/datalith/predictit-etl/internal/runlog"
)

// NewStatusCmd creates the status command, which prints recent run history
// from the run log store.
func NewStatusCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent pipeline runs from the run log store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(configPath, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}

func runStatus(configPath string, limit int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	if cfg.RunLog.DSN == "" {
		return fmt.Errorf("run history requires runLog.dsn (RUN_LOG_DSN)")
	}

	store, err := runlog.New(ctx, cfg.RunLog.DSN)
	if err != nil {
		return fmt.Errorf("connecting to run log store: %w", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("querying run history: %w", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		printRunEntry(run)
	}
	return nil
}

func printRunEntry(run runlog.Entry) {
	started := run.StartedAt.Format(time.RFC3339)
	switch run.Status {
	case pipeline.StatusSucceeded:
		color.Green("✓ %s  %s  %d rows", run.RunID, started, run.RawRows)
	case pipeline.StatusFailed:
		color.Red("✗ %s  %s  failed at %s: %s", run.RunID, started, run.FailedStage, run.FailureMessage)
	default:
		color.Yellow("… %s  %s  %s", run.RunID, started, run.Status)
	}
}
