package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const extractTimeout = 5 * time.Minute

// NewExtractCmd creates the extract command, which fetches market data and
// writes the timestamped envelope file without touching S3 or the warehouse.
func NewExtractCmd() *cobra.Command {
	var (
		configPath string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fetch market data and write the local envelope file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(configPath, outputDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Override the configured output directory")
	return cmd
}

func runExtract(configPath, outputDir string) error {
	logger := newLogger(false)
	ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAPI(); err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = cfg.Pipeline.OutputDir
	}

	path, err := buildExtractor(cfg, logger).ExtractAndPersist(ctx, outputDir)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}
	color.Green("Wrote %s", path)
	return nil
}
