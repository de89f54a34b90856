package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"reelkit/internal/paths"
)

func TestNewWritesJSONFile(t *testing.T) {
	pp, err := paths.Resolve(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var console bytes.Buffer
	logger, closer, err := New(pp, Options{Console: &console})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("saved", "project", "p1")
	closer.Close()

	entries, err := os.ReadDir(pp.LogsDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", entries, err)
	}
	var rec map[string]any
	if err := json.Unmarshal(console.Bytes(), &rec); err != nil {
		t.Fatalf("console copy is not JSON: %v", err)
	}
	if rec["msg"] != "saved" || rec["project"] != "p1" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestSpanContextAttached(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	logger := NewWriter(&buf, slog.LevelInfo).With("component", "test")
	logger.InfoContext(ctx, "inside")
	logger.Info("outside")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected 2 records, got %d", len(lines))
	}
	var inside, outside map[string]any
	json.Unmarshal(lines[0], &inside)
	json.Unmarshal(lines[1], &outside)
	if inside["trace_id"] != span.SpanContext().TraceID().String() || inside["component"] != "test" {
		t.Fatalf("expected trace id on record, got %v", inside)
	}
	if _, ok := outside["trace_id"]; ok {
		t.Fatal("records without a span must not carry a trace id")
	}
}
