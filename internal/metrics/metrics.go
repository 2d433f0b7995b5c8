// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	RunsTotal        = expvar.NewInt("runs_total")
	RunsFailed       = expvar.NewInt("runs_failed")
	ExtractionsTotal = expvar.NewInt("extractions_total")
	UploadsTotal     = expvar.NewInt("uploads_total")
	QueriesTotal     = expvar.NewInt("queries_total")
	EmptyLoads       = expvar.NewInt("empty_loads")
	QualityFailures  = expvar.NewInt("quality_failures")
	AlertsDispatched = expvar.NewInt("alerts_dispatched")
)
