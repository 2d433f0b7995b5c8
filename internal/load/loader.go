// Package load moves staged JSON files from the external stage into the raw
// fact table.
//
// Each run walks a fixed state machine:
//
//	STAGING_EMPTY -> STAGING_LOADED -> RAW_TRUNCATED -> RAW_LOADED -> STAGING_CLEARED
//
// Every table the loader populates is truncated and fully reloaded, so a
// repeated run against the same staged files lands the same final row
// counts.
package load

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datalith/predictit-etl/internal/warehouse"
)

// State identifies where in the load sequence a run is.
type State string

const (
	StateStagingEmpty   State = "STAGING_EMPTY"
	StateStagingLoaded  State = "STAGING_LOADED"
	StateRawTruncated   State = "RAW_TRUNCATED"
	StateRawLoaded      State = "RAW_LOADED"
	StateStagingCleared State = "STAGING_CLEARED"
)

// EmptyLoadError indicates a load step that should have populated a table
// left it empty, signalling upstream data loss.
type EmptyLoadError struct {
	Table string
}

func (e *EmptyLoadError) Error() string {
	return fmt.Sprintf("table %s is empty after load", e.Table)
}

// Result summarises a completed load.
type Result struct {
	State       State
	StagingRows int64
	RawRows     int64
}

// Loader drives the staging-to-raw load sequence.
type Loader struct {
	q         warehouse.Querier
	stageName string
	qualifier string
	logger    *slog.Logger
}

// NewLoader creates a Loader. database and schema qualify the tables and
// the stage the COPY reads from.
func NewLoader(q warehouse.Querier, database, schema, stageName string, logger *slog.Logger) *Loader {
	return &Loader{
		q:         q,
		stageName: fmt.Sprintf("%s.%s.%s", database, schema, stageName),
		qualifier: fmt.Sprintf("%s.%s", database, schema),
		logger:    logger,
	}
}

// Load runs the full staging-to-raw sequence. Staging is truncated both at
// the start of the run (safe-to-repeat recovery from a prior failure
// between raw insert and cleanup) and after a successful load.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	res := &Result{State: StateStagingEmpty}

	// Create-if-absent so a fresh warehouse bootstraps, then clear any
	// leftovers from an earlier aborted run.
	if _, err := l.q.Run(ctx, fmt.Sprintf(createStagingTmpl, l.qualifier)); err != nil {
		return res, fmt.Errorf("creating staging table: %w", err)
	}
	if _, err := l.q.Run(ctx, fmt.Sprintf(createRawTmpl, l.qualifier)); err != nil {
		return res, fmt.Errorf("creating raw table: %w", err)
	}
	if _, err := l.q.Run(ctx, fmt.Sprintf(truncateStagingTmpl, l.qualifier)); err != nil {
		return res, fmt.Errorf("truncating staging table: %w", err)
	}

	if _, err := l.q.Run(ctx, fmt.Sprintf(copyIntoStagingTmpl, l.qualifier, l.stageName)); err != nil {
		return res, fmt.Errorf("copying staged files: %w", err)
	}

	stagingRows, err := l.count(ctx, countStagingTmpl)
	if err != nil {
		return res, err
	}
	if stagingRows == 0 {
		return res, &EmptyLoadError{Table: l.qualifier + ".RAW_JSON_STAGING"}
	}
	res.State = StateStagingLoaded
	res.StagingRows = stagingRows
	l.logger.Info("staging loaded", "rows", stagingRows)

	if _, err := l.q.Run(ctx, fmt.Sprintf(truncateRawTmpl, l.qualifier)); err != nil {
		return res, fmt.Errorf("truncating raw table: %w", err)
	}
	res.State = StateRawTruncated

	if _, err := l.q.Run(ctx, fmt.Sprintf(insertRawTmpl, l.qualifier)); err != nil {
		return res, fmt.Errorf("flattening markets into raw table: %w", err)
	}

	rawRows, err := l.count(ctx, countRawTmpl)
	if err != nil {
		return res, err
	}
	if rawRows == 0 {
		return res, &EmptyLoadError{Table: l.qualifier + ".PREDICTIT_RAW"}
	}
	res.State = StateRawLoaded
	res.RawRows = rawRows
	l.logger.Info("raw table loaded", "rows", rawRows)

	if _, err := l.q.Run(ctx, fmt.Sprintf(truncateStagingTmpl, l.qualifier)); err != nil {
		return res, fmt.Errorf("clearing staging table: %w", err)
	}
	res.State = StateStagingCleared

	return res, nil
}

func (l *Loader) count(ctx context.Context, tmpl string) (int64, error) {
	sql := fmt.Sprintf(tmpl, l.qualifier)
	rows, err := l.q.Run(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	n, err := warehouse.ScanCount(rows)
	if err != nil {
		return 0, fmt.Errorf("reading count: %w", err)
	}
	return n, nil
}
