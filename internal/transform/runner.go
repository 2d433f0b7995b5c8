// Package transform rebuilds the analytics tables from the raw fact table.
//
// The three transforms run strictly in order: MARKET_SUMMARY and
// CONTRACT_DETAILS are truncated and repopulated first because the
// DAILY_MARKET_METRICS merge reads from both.
package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datalith/predictit-etl/internal/warehouse"
)

// Runner executes the analytics transforms.
type Runner struct {
	q         warehouse.Querier
	analytics string
	raw       string
	logger    *slog.Logger
}

// NewRunner creates a Runner. database plus each schema qualify the
// analytics and raw tables.
func NewRunner(q warehouse.Querier, database, rawSchema, analyticsSchema string, logger *slog.Logger) *Runner {
	return &Runner{
		q:         q,
		analytics: fmt.Sprintf("%s.%s", database, analyticsSchema),
		raw:       fmt.Sprintf("%s.%s", database, rawSchema),
		logger:    logger,
	}
}

// Run executes all three transforms in order.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.ensureTables(ctx); err != nil {
		return err
	}
	if err := r.rebuildMarketSummary(ctx); err != nil {
		return err
	}
	if err := r.rebuildContractDetails(ctx); err != nil {
		return err
	}
	return r.mergeDailyMetrics(ctx)
}

func (r *Runner) ensureTables(ctx context.Context) error {
	for _, tmpl := range []string{createMarketSummaryTmpl, createContractDetailsTmpl, createDailyMetricsTmpl} {
		if _, err := r.q.Run(ctx, fmt.Sprintf(tmpl, r.analytics)); err != nil {
			return fmt.Errorf("creating analytics table: %w", err)
		}
	}
	return nil
}

// rebuildMarketSummary repopulates the one-row-per-market snapshot table.
func (r *Runner) rebuildMarketSummary(ctx context.Context) error {
	if _, err := r.q.Run(ctx, fmt.Sprintf(truncateMarketSummaryTmpl, r.analytics)); err != nil {
		return fmt.Errorf("truncating market summary: %w", err)
	}
	if _, err := r.q.Run(ctx, fmt.Sprintf(insertMarketSummaryTmpl, r.analytics, r.raw)); err != nil {
		return fmt.Errorf("rebuilding market summary: %w", err)
	}
	r.logger.Info("market summary rebuilt")
	return nil
}

// rebuildContractDetails repopulates the one-row-per-contract snapshot
// table, flattened out of each market's nested contract array.
func (r *Runner) rebuildContractDetails(ctx context.Context) error {
	if _, err := r.q.Run(ctx, fmt.Sprintf(truncateContractDetailsTmpl, r.analytics)); err != nil {
		return fmt.Errorf("truncating contract details: %w", err)
	}
	if _, err := r.q.Run(ctx, fmt.Sprintf(insertContractDetailsTmpl, r.analytics, r.raw)); err != nil {
		return fmt.Errorf("rebuilding contract details: %w", err)
	}
	r.logger.Info("contract details rebuilt")
	return nil
}

// mergeDailyMetrics upserts today's aggregate row per market. Matching
// (MARKET_ID, METRIC_DATE) keys update in place; new keys insert.
func (r *Runner) mergeDailyMetrics(ctx context.Context) error {
	if _, err := r.q.Run(ctx, fmt.Sprintf(mergeDailyMetricsTmpl, r.analytics)); err != nil {
		return fmt.Errorf("merging daily metrics: %w", err)
	}
	r.logger.Info("daily metrics merged")
	return nil
}
