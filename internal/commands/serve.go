package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/datalith/predictit-etl/internal/pipeline"
	"github.com/datalith/predictit-etl/internal/runlog"
	"github.com/datalith/predictit-etl/internal/server"
)

// NewServeCmd creates the serve command, which runs the status server and,
// when an interval is set, executes pipeline runs on a ticker.
func NewServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		interval   time.Duration
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the status HTTP server, optionally with scheduled pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, addr, interval, verbose)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config YAML")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Run the pipeline every interval (0 disables scheduling)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	return cmd
}

func runServe(configPath, addr string, interval time.Duration, verbose bool) error {
	logger := newLogger(verbose)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	tracker := &pipeline.Tracker{}

	var history server.RunHistory
	if cfg.RunLog.DSN != "" {
		store, err := runlog.New(ctx, cfg.RunLog.DSN)
		if err != nil {
			logger.Warn("run log store unavailable", "error", err)
		} else {
			defer store.Close()
			history = store
		}
	}

	srv := server.New(addr, tracker, history, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if interval > 0 {
		var driver *pipeline.Driver
		var cleanup func()
		driver, cleanup, err = buildDriver(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			logger.Info("scheduler started", "interval", interval)
			tracker.Record(driver.Run(ctx))
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					tracker.Record(driver.Run(ctx))
				}
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}
