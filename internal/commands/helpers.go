// Package commands implements the CLI subcommands for the predictit-etl
// binary.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/datalith/predictit-etl/internal/config"
	"github.com/datalith/predictit-etl/internal/extract"
	"github.com/datalith/predictit-etl/internal/pipeline"
	"github.com/datalith/predictit-etl/internal/stage"
)

// newLogger builds the process logger. Structured JSON on stderr so stdout
// stays clean for command output.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file, resolves secrets, and returns the
// merged configuration. Validation is per-command; the partial commands
// only validate the sections they touch.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ResolveSecrets(ctx, nil); err != nil {
		return nil, fmt.Errorf("resolving secrets: %w", err)
	}
	return cfg, nil
}

// stageSpec builds the external stage definition from config.
func stageSpec(cfg *config.Config) stage.Spec {
	return stage.Spec{
		Name:      cfg.Pipeline.StageName,
		Bucket:    cfg.AWS.Bucket,
		Path:      cfg.Pipeline.KeyPrefix,
		KeyID:     cfg.AWS.AccessKeyID,
		SecretKey: cfg.AWS.SecretAccessKey,
	}
}

// buildExtractor creates the API extractor from config.
func buildExtractor(cfg *config.Config, logger *slog.Logger) *extract.Extractor {
	var opts []extract.Option
	if cfg.API.Token != "" {
		opts = append(opts, extract.WithToken(cfg.API.Token))
	}
	return extract.New(cfg.API.BaseURL, logger, opts...)
}

// buildDriver wires the full pipeline from config.
func buildDriver(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Driver, func(), error) {
	return pipeline.FromConfig(ctx, cfg, logger)
}
