// Package logx builds the structured loggers and trace provider used by the
// CLI and the API server.
package logx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/trace"

	"reelkit/internal/paths"
)

// Options controls logger construction.
type Options struct {
	Level slog.Level
	// Console, when set, receives a copy of every record.
	Console io.Writer
}

// New creates a logger that writes JSON records to a timestamped file inside
// the project's logs directory. The returned closer should be closed when
// logging is no longer needed.
func New(p paths.ProjectPaths, opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405") + ".log"
	filePath := filepath.Join(p.LogsDir, filename)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = file
	if opts.Console != nil {
		w = io.MultiWriter(file, opts.Console)
	}
	return NewWriter(w, opts.Level), file, nil
}

// NewWriter returns a JSON logger on w that tags records with the active
// span.
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(withSpanContext(handler))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// spanContextHandler adds trace and span ids of the context's span to each
// record.
type spanContextHandler struct {
	slog.Handler
}

func withSpanContext(h slog.Handler) *spanContextHandler {
	return &spanContextHandler{Handler: h}
}

func (h *spanContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if s := trace.SpanContextFromContext(ctx); s.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", s.TraceID().String()),
			slog.String("span_id", s.SpanID().String()),
			slog.Bool("trace_sampled", s.TraceFlags().IsSampled()),
		)
	}
	return h.Handler.Handle(ctx, record)
}

func (h *spanContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return withSpanContext(h.Handler.WithAttrs(attrs))
}

func (h *spanContextHandler) WithGroup(name string) slog.Handler {
	return withSpanContext(h.Handler.WithGroup(name))
}
