package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger is a no-op until InitLogger runs, so packages and tests can log
// without setup.
var Logger = zap.NewNop()

// InitLogger replaces Logger with a JSON production logger at the given
// level ("debug", "info", "warn", "error").
func InitLogger(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl

	logger, err := cfg.Build(zap.Fields(zap.String("service", ServiceName())))
	if err != nil {
		return err
	}
	Logger = logger

	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerWithTrace returns a child logger enriched with trace_id and span_id
// fields from the active OTel span in ctx.
//
// ctx itself is attached as the "context" field: the otelzap bridge uses any
// context-valued field as the context for Emit, so exported OTLP records carry
// the native TraceID/SpanID instead of zeros.
func LoggerWithTrace(ctx context.Context) *zap.Logger {
	span := trace.SpanContextFromContext(ctx)

	if !span.IsValid() {
		return Logger
	}

	return Logger.With(
		zap.Any("context", ctx),
		zap.String("trace_id", span.TraceID().String()),
		zap.String("span_id", span.SpanID().String()),
	)
}
