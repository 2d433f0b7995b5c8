// Package quality runs read-only post-load checks against the raw fact
// table. Only the row-count check fails the run; the null check logs a
// warning and the sample is observational.
package quality

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datalith/predictit-etl/internal/warehouse"
)

// DataQualityError indicates the mandatory post-load check failed.
type DataQualityError struct {
	Check  string
	Detail string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality check %q failed: %s", e.Check, e.Detail)
}

// Report summarises the gate's findings.
type Report struct {
	RowCount    int64
	NullKeyRows int64
	SampleRows  int
}

// Gate executes the post-load checks.
type Gate struct {
	q         warehouse.Querier
	qualifier string
	logger    *slog.Logger
}

// NewGate creates a Gate for the raw schema.
func NewGate(q warehouse.Querier, database, schema string, logger *slog.Logger) *Gate {
	return &Gate{q: q, qualifier: fmt.Sprintf("%s.%s", database, schema), logger: logger}
}

// Check runs the three checks in order. A zero row count returns a
// DataQualityError; null key columns are logged as warnings only.
func (g *Gate) Check(ctx context.Context) (*Report, error) {
	report := &Report{}

	rows, err := g.q.Run(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s.PREDICTIT_RAW;", g.qualifier))
	if err != nil {
		return nil, fmt.Errorf("counting raw rows: %w", err)
	}
	count, err := warehouse.ScanCount(rows)
	if err != nil {
		return nil, fmt.Errorf("reading raw count: %w", err)
	}
	report.RowCount = count
	if count == 0 {
		return report, &DataQualityError{Check: "row_count", Detail: "no rows in raw fact table"}
	}
	g.logger.Info("row count check passed", "rows", count)

	nullSQL := fmt.Sprintf(`SELECT COUNT(*)
FROM %s.PREDICTIT_RAW
WHERE market_id IS NULL OR market_name IS NULL;`, g.qualifier)
	rows, err = g.q.Run(ctx, nullSQL)
	if err != nil {
		return report, fmt.Errorf("counting null key columns: %w", err)
	}
	nulls, err := warehouse.ScanCount(rows)
	if err != nil {
		return report, fmt.Errorf("reading null count: %w", err)
	}
	report.NullKeyRows = nulls
	if nulls > 0 {
		g.logger.Warn("null values in key columns", "rows", nulls)
	} else {
		g.logger.Info("null check passed")
	}

	sample, err := g.q.Run(ctx, fmt.Sprintf("SELECT * FROM %s.PREDICTIT_RAW LIMIT 3;", g.qualifier))
	if err != nil {
		return report, fmt.Errorf("sampling raw rows: %w", err)
	}
	report.SampleRows = len(sample)
	g.logger.Info("sample retrieved", "rows", len(sample))

	return report, nil
}
