package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/datalith/predictit-etl/internal/objectstore"
)

const uploadTimeout = 10 * time.Minute

// NewUploadCmd creates the upload command, which lands an already-extracted
// envelope file under the date-partitioned key for today.
func NewUploadCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a local envelope file to the landing bucket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	return cmd
}

func runUpload(configPath, localPath string) error {
	logger := newLogger(false)
	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateAWS(); err != nil {
		return err
	}

	writer, err := objectstore.NewWriter(ctx, cfg.AWS.Bucket, cfg.AWS.Region, logger)
	if err != nil {
		return fmt.Errorf("creating object store writer: %w", err)
	}

	key := objectstore.PartitionKey(cfg.Pipeline.KeyPrefix, time.Now().UTC(), localPath)
	uri, err := writer.Upload(ctx, localPath, key)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	color.Green("Uploaded %s", uri)
	return nil
}
