// Package alert implements run-outcome alert dispatching to multiple sinks.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/datalith/predictit-etl/internal/config"
)

// Level is an alert severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Alert describes a pipeline run outcome worth notifying about.
type Alert struct {
	Level     Level     `json:"level"`
	RunID     string    `json:"runId,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Sink is an alert destination.
type Sink interface {
	Send(ctx context.Context, alert Alert) error
	Name() string
}

// Dispatcher routes alerts to configured sinks.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher from alert configs.
func NewDispatcher(configs []config.AlertConfig, logger *slog.Logger) (*Dispatcher, error) {
	d := &Dispatcher{logger: logger}
	for _, cfg := range configs {
		sink, err := newSink(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating %s sink: %w", cfg.Type, err)
		}
		d.sinks = append(d.sinks, sink)
	}
	return d, nil
}

// Dispatch sends an alert to all configured sinks. Sink errors are logged,
// not propagated; alerting never fails a run.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now()
	}
	for _, sink := range d.sinks {
		if err := sink.Send(ctx, alert); err != nil {
			d.logger.Error("alert send failed", "sink", sink.Name(), "error", err)
		}
	}
}

func newSink(cfg config.AlertConfig) (Sink, error) {
	switch cfg.Type {
	case "console":
		return NewConsoleSink(), nil
	case "webhook":
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook URL required")
		}
		return NewWebhookSink(cfg.URL), nil
	case "sns":
		return NewSNSSink(cfg.TopicARN)
	default:
		return nil, fmt.Errorf("unknown alert type %q", cfg.Type)
	}
}
