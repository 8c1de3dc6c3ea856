package observability

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLoggerLevel(t *testing.T) {
	oldLogger := Logger
	t.Cleanup(func() { Logger = oldLogger })

	if err := InitLogger("warn"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}
	if !Logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("expected warn to be enabled")
	}
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	oldLogger := Logger
	t.Cleanup(func() { Logger = oldLogger })

	if err := InitLogger("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerWithTraceAddsSpanFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	oldLogger := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = oldLogger })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	LoggerWithTrace(ctx).Info("hello")
	LoggerWithTrace(context.Background()).Info("plain")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["trace_id"] != sc.TraceID().String() {
		t.Fatalf("expected trace_id %q, got %#v", sc.TraceID().String(), fields["trace_id"])
	}
	if fields["span_id"] != sc.SpanID().String() {
		t.Fatalf("expected span_id %q, got %#v", sc.SpanID().String(), fields["span_id"])
	}

	if _, ok := entries[1].ContextMap()["trace_id"]; ok {
		t.Fatal("did not expect trace_id without an active span")
	}
}
