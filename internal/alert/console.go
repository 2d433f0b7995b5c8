package alert

import (
	"context"
	"fmt"

	"github.com/fatih/color"
)

// ConsoleSink writes alerts to the terminal with color.
type ConsoleSink struct{}

// NewConsoleSink creates a new console alert sink.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

// Name returns the sink identifier.
func (s *ConsoleSink) Name() string { return "console" }

// Send writes an alert to the terminal with color-coded severity.
func (s *ConsoleSink) Send(_ context.Context, alert Alert) error {
	var prefix string
	switch alert.Level {
	case LevelError:
		prefix = color.RedString("[ERROR]")
	case LevelWarning:
		prefix = color.YellowString("[WARN]")
	default:
		prefix = color.CyanString("[INFO]")
	}

	if alert.Stage != "" {
		fmt.Printf("%s [%s] %s\n", prefix, alert.Stage, alert.Message)
	} else {
		fmt.Printf("%s %s\n", prefix, alert.Message)
	}
	return nil
}
