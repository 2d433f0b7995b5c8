package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datalith/predictit-etl/internal/alert"
	"github.com/datalith/predictit-etl/internal/config"
	"github.com/datalith/predictit-etl/internal/extract"
	"github.com/datalith/predictit-etl/internal/load"
	"github.com/datalith/predictit-etl/internal/objectstore"
	"github.com/datalith/predictit-etl/internal/quality"
	"github.com/datalith/predictit-etl/internal/runlog"
	"github.com/datalith/predictit-etl/internal/stage"
	"github.com/datalith/predictit-etl/internal/transform"
	"github.com/datalith/predictit-etl/internal/warehouse"
)

// FromConfig wires a Driver with real components from validated config.
// The returned cleanup closes the run log store, if one was opened.
func FromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Driver, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var extractOpts []extract.Option
	if cfg.API.Token != "" {
		extractOpts = append(extractOpts, extract.WithToken(cfg.API.Token))
	}
	extractor := extract.New(cfg.API.BaseURL, logger, extractOpts...)

	writer, err := objectstore.NewWriter(ctx, cfg.AWS.Bucket, cfg.AWS.Region, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating object store writer: %w", err)
	}

	wh, err := warehouse.NewClient(cfg.Snowflake, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating warehouse client: %w", err)
	}

	stager := stage.NewManager(wh, cfg.Snowflake.Database, cfg.Snowflake.Schema, logger)
	loader := load.NewLoader(wh, cfg.Snowflake.Database, cfg.Snowflake.Schema, cfg.Pipeline.StageName, logger)
	transformer := transform.NewRunner(wh, cfg.Snowflake.Database, cfg.Snowflake.Schema, cfg.Snowflake.AnalyticsSchema, logger)
	gate := quality.NewGate(wh, cfg.Snowflake.Database, cfg.Snowflake.Schema, logger)

	dispatcher, err := alert.NewDispatcher(cfg.Alerts, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating alert dispatcher: %w", err)
	}

	cleanup := func() {}
	var recorder RunRecorder
	if cfg.RunLog.DSN != "" {
		store, err := runlog.New(ctx, cfg.RunLog.DSN)
		if err != nil {
			// History is a convenience; a missing Postgres must not block
			// the scheduled run.
			logger.Warn("run log store unavailable, continuing without history", "error", err)
		} else if err := store.Migrate(ctx); err != nil {
			logger.Warn("run log migrate failed, continuing without history", "error", err)
			store.Close()
		} else {
			recorder = store
			cleanup = store.Close
		}
	}

	opts := Options{
		OutputDir: cfg.Pipeline.OutputDir,
		KeyPrefix: cfg.Pipeline.KeyPrefix,
		StageSpec: stage.Spec{
			Name:      cfg.Pipeline.StageName,
			Bucket:    cfg.AWS.Bucket,
			Path:      cfg.Pipeline.KeyPrefix,
			KeyID:     cfg.AWS.AccessKeyID,
			SecretKey: cfg.AWS.SecretAccessKey,
		},
	}
	driver := New(extractor, writer, stager, loader, transformer, gate,
		dispatcher, recorder, opts, logger)
	return driver, cleanup, nil
}
