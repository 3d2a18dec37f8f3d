package service

import (
	"context"
	"log/slog"
)

// Reporter receives non-fatal messages produced while resolving a marker.
type Reporter interface {
	Error(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
}

// LogReporter forwards reports to a structured logger.
type LogReporter struct {
	log *slog.Logger
}

// NewLogReporter creates a Reporter that writes errors and informational messages to log.
func NewLogReporter(log *slog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (lr *LogReporter) Error(ctx context.Context, msg string, args ...any) {
	lr.log.ErrorContext(ctx, msg, args...)
}

func (lr *LogReporter) Info(ctx context.Context, msg string, args ...any) {
	lr.log.InfoContext(ctx, msg, args...)
}

// TransportGate reports whether outbound network access is allowed.
type TransportGate func() bool

// StaticGate returns a TransportGate with a fixed answer.
func StaticGate(enabled bool) TransportGate {
	return func() bool { return enabled }
}
