// Package pipeline drives one end-to-end run: extract market data, land
// it in the object store, define the external stage, load and flatten it
// into the warehouse, rebuild the analytics tables, and gate on quality.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/datalith/predictit-etl/internal/alert"
	"github.com/datalith/predictit-etl/internal/load"
	"github.com/datalith/predictit-etl/internal/metrics"
	"github.com/datalith/predictit-etl/internal/objectstore"
	"github.com/datalith/predictit-etl/internal/quality"
	"github.com/datalith/predictit-etl/internal/runlog"
	"github.com/datalith/predictit-etl/internal/stage"
)

// Stage names reported in results, logs, and alerts.
const (
	StageExtract   = "extract"
	StageUpload    = "upload"
	StageStage     = "stage"
	StageLoad      = "load"
	StageTransform = "transform"
	StageQuality   = "quality"
)

// Run statuses stored in the run log.
const (
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Extractor fetches market data and persists it locally.
type Extractor interface {
	ExtractAndPersist(ctx context.Context, outputDir string) (string, error)
}

// Uploader lands a local file in the object store.
type Uploader interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// Stager ensures the warehouse external stage exists.
type Stager interface {
	EnsureStage(ctx context.Context, spec stage.Spec) error
}

// Loader copies staged files into the raw table.
type Loader interface {
	Load(ctx context.Context) (*load.Result, error)
}

// Transformer rebuilds the analytics tables.
type Transformer interface {
	Run(ctx context.Context) error
}

// Gate verifies the loaded data.
type Gate interface {
	Check(ctx context.Context) (*quality.Report, error)
}

// Alerter fans an alert out to the configured sinks.
type Alerter interface {
	Dispatch(ctx context.Context, a alert.Alert)
}

// RunRecorder persists run history. Optional; a nil recorder disables it.
type RunRecorder interface {
	UpsertRun(ctx context.Context, entry runlog.Entry) error
}

// StageResult is the outcome of one pipeline stage.
type StageResult struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID       string          `json:"runID"`
	Status      string          `json:"status"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt time.Time       `json:"completedAt"`
	Stages      []StageResult   `json:"stages"`
	FilePath    string          `json:"filePath,omitempty"`
	StorageKey  string          `json:"storageKey,omitempty"`
	RawRows     int64           `json:"rawRows"`
	Report      *quality.Report `json:"report,omitempty"`
	Err         error           `json:"-"`
}

// Options are the run parameters not owned by a component.
type Options struct {
	OutputDir string
	KeyPrefix string
	StageSpec stage.Spec
}

// Driver composes the pipeline stages and runs them in order.
type Driver struct {
	extractor   Extractor
	uploader    Uploader
	stager      Stager
	loader      Loader
	transformer Transformer
	gate        Gate

	dispatcher Alerter
	recorder   RunRecorder
	opts       Options
	logger     *slog.Logger
	now        func() time.Time
}

// New builds a Driver. dispatcher and recorder may be nil.
func New(extractor Extractor, uploader Uploader, stager Stager, loader Loader,
	transformer Transformer, gate Gate, dispatcher Alerter,
	recorder RunRecorder, opts Options, logger *slog.Logger) *Driver {
	return &Driver{
		extractor:   extractor,
		uploader:    uploader,
		stager:      stager,
		loader:      loader,
		transformer: transformer,
		gate:        gate,
		dispatcher:  dispatcher,
		recorder:    recorder,
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one full pipeline run. The returned Result is always
// non-nil; Result.Err carries the first stage failure, if any.
func (d *Driver) Run(ctx context.Context) *Result {
	res := &Result{
		RunID:     ulid.Make().String(),
		Status:    StatusRunning,
		StartedAt: d.now(),
	}
	metrics.RunsTotal.Add(1)
	d.logger.Info("pipeline run starting", "runID", res.RunID)
	d.record(ctx, res)

	if err := d.runStages(ctx, res); err != nil {
		res.Err = err
		res.Status = StatusFailed
		metrics.RunsFailed.Add(1)
		failed := ""
		if n := len(res.Stages); n > 0 {
			failed = res.Stages[n-1].Name
		}
		d.logger.Error("pipeline run failed", "runID", res.RunID, "stage", failed, "error", err)
		d.alert(ctx, alert.LevelError, res.RunID, failed,
			fmt.Sprintf("run %s failed: %v", res.RunID, err))
	} else {
		res.Status = StatusSucceeded
		d.logger.Info("pipeline run succeeded", "runID", res.RunID,
			"storageKey", res.StorageKey, "rawRows", res.RawRows)
		d.alert(ctx, alert.LevelInfo, res.RunID, "",
			fmt.Sprintf("run %s succeeded: %d rows loaded", res.RunID, res.RawRows))
	}

	res.CompletedAt = d.now()
	d.record(ctx, res)
	return res
}

func (d *Driver) runStages(ctx context.Context, res *Result) error {
	var err error

	res.FilePath, err = d.step(res, StageExtract, func() (string, error) {
		path, err := d.extractor.ExtractAndPersist(ctx, d.opts.OutputDir)
		if err == nil {
			metrics.ExtractionsTotal.Add(1)
		}
		return path, err
	})
	if err != nil {
		return err
	}

	res.StorageKey, err = d.step(res, StageUpload, func() (string, error) {
		key := objectstore.PartitionKey(d.opts.KeyPrefix, res.StartedAt.UTC(), res.FilePath)
		uri, err := d.uploader.Upload(ctx, res.FilePath, key)
		if err == nil {
			metrics.UploadsTotal.Add(1)
		}
		return uri, err
	})
	if err != nil {
		return err
	}

	if _, err = d.step(res, StageStage, func() (string, error) {
		return "", d.stager.EnsureStage(ctx, d.opts.StageSpec)
	}); err != nil {
		return err
	}

	if _, err = d.step(res, StageLoad, func() (string, error) {
		loadRes, err := d.loader.Load(ctx)
		if loadRes != nil {
			res.RawRows = loadRes.RawRows
		}
		var empty *load.EmptyLoadError
		if errors.As(err, &empty) {
			metrics.EmptyLoads.Add(1)
		}
		return "", err
	}); err != nil {
		return err
	}

	if _, err = d.step(res, StageTransform, func() (string, error) {
		return "", d.transformer.Run(ctx)
	}); err != nil {
		return err
	}

	_, err = d.step(res, StageQuality, func() (string, error) {
		report, err := d.gate.Check(ctx)
		res.Report = report
		if err != nil {
			metrics.QualityFailures.Add(1)
		}
		return "", err
	})
	return err
}

// step runs one stage, recording its duration and error on the result.
func (d *Driver) step(res *Result, name string, fn func() (string, error)) (string, error) {
	start := d.now()
	out, err := fn()
	sr := StageResult{Name: name, Duration: d.now().Sub(start)}
	if err != nil {
		sr.Error = err.Error()
	}
	res.Stages = append(res.Stages, sr)
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	d.logger.Info("stage complete", "runID", res.RunID, "stage", name, "duration", sr.Duration)
	return out, nil
}

func (d *Driver) alert(ctx context.Context, level alert.Level, runID, stageName, message string) {
	if d.dispatcher == nil {
		return
	}
	d.dispatcher.Dispatch(ctx, alert.Alert{
		Level:   level,
		RunID:   runID,
		Stage:   stageName,
		Message: message,
	})
	metrics.AlertsDispatched.Add(1)
}

func (d *Driver) record(ctx context.Context, res *Result) {
	if d.recorder == nil {
		return
	}
	entry := runlog.Entry{
		RunID:      res.RunID,
		Status:     res.Status,
		StorageKey: res.StorageKey,
		RawRows:    res.RawRows,
		StartedAt:  res.StartedAt,
	}
	if res.Status != StatusRunning {
		completed := res.CompletedAt
		entry.CompletedAt = &completed
	}
	if res.Err != nil {
		entry.FailureMessage = res.Err.Error()
		if n := len(res.Stages); n > 0 {
			entry.FailedStage = res.Stages[n-1].Name
		}
	}
	if err := d.recorder.UpsertRun(ctx, entry); err != nil {
		d.logger.Warn("run log write failed", "runID", res.RunID, "error", err)
	}
}
