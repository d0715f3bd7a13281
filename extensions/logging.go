package extensions

import (
	"context"
	"log/slog"
	"time"

	derive "github.com/derive-fn/derive-go"
)

// LoggingExtension logs operations and render passes through slog.
//
// Usage:
//
//	// Structured JSON logging
//	ext := extensions.NewLoggingExtension(slog.NewJSONHandler(os.Stdout, nil))
//
//	// Silent (for testing)
//	ext := extensions.NewLoggingExtension(extensions.NewSilentHandler())
type LoggingExtension struct {
	derive.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a logging extension writing to the given handler
func NewLoggingExtension(handler slog.Handler) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: derive.NewBaseExtension("logging"),
		logger:        slog.New(handler),
	}
}

// Wrap logs each operation with its duration
func (e *LoggingExtension) Wrap(ctx context.Context, next func() (any, error), op *derive.Operation) (any, error) {
	start := time.Now()
	result, err := next()
	duration := time.Since(start)

	attrs := []any{
		"operation", string(op.Kind),
		"duration", duration,
	}
	if op.Signal != nil {
		attrs = append(attrs, "signal", signalName(op.Signal))
	}
	if op.Component != nil {
		attrs = append(attrs, "component", componentName(op.Component))
	}

	if err != nil {
		attrs = append(attrs, "error", err.Error())
		e.logger.LogAttrs(ctx, slog.LevelWarn, "operation failed", argsToAttrs(attrs)...)
	} else {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "operation completed", argsToAttrs(attrs)...)
	}

	return result, err
}

// OnError logs resolution and render failures
func (e *LoggingExtension) OnError(err error, op *derive.Operation, scope *derive.Scope) {
	e.logger.Error("operation error",
		"operation", string(op.Kind),
		"error", err.Error(),
	)
}

// OnCleanupError logs cleanup failures without claiming them handled
func (e *LoggingExtension) OnCleanupError(cleanupErr *derive.CleanupError) bool {
	e.logger.Error("cleanup error",
		"owner", cleanupErr.Owner,
		"context", cleanupErr.Context,
		"error", cleanupErr.Err.Error(),
	)
	return false
}

// OnPassEnd logs a summary of each render pass
func (e *LoggingExtension) OnPassEnd(scope *derive.Scope, rec *derive.PassRecord, err error) error {
	level := slog.LevelInfo
	if rec.Status == derive.PassStatusFailed {
		level = slog.LevelError
	}

	e.logger.Log(context.Background(), level, "render pass finished",
		"seq", rec.Seq,
		"status", string(rec.Status),
		"rendered", len(rec.Rendered),
		"duration", rec.End.Sub(rec.Start),
	)
	return nil
}

func argsToAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		attrs = append(attrs, slog.Any(args[i].(string), args[i+1]))
	}
	return attrs
}

func signalName(sig derive.AnySignal) string {
	if name, ok := derive.SignalName().Get(sig); ok {
		return name
	}
	return sig.Key()
}

func componentName(c *derive.Component) string {
	if name, ok := derive.ComponentName().Get(c); ok {
		return name
	}
	return c.ID()
}

// SilentHandler is a slog.Handler that discards all log output
// Useful for testing when you don't want log output
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h
}
