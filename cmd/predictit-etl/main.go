package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/datalith/predictit-etl/internal/commands"
)

var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	root := &cobra.Command{
		Use:   "predictit-etl",
		Short: "Daily batch ETL for PredictIt market data",
		Long: `predictit-etl extracts the full PredictIt market snapshot, lands it in
S3 under a date-partitioned key, loads it through a Snowflake external
stage into a raw VARIANT table, rebuilds the analytics tables, and gates
the run on data quality checks.`,
		Version: version,
	}

	root.AddCommand(
		commands.NewRunCmd(),
		commands.NewExtractCmd(),
		commands.NewUploadCmd(),
		commands.NewLoadCmd(),
		commands.NewTransformCmd(),
		commands.NewCheckCmd(),
		commands.NewStatusCmd(),
		commands.NewServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
