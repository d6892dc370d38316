// Package observability provides structured logging, metrics and tracing
// for the extraction pipeline and layout emission.
//
//   - Structured logging via slog
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Every helper tolerates a nil logger, and metrics/tracing have no-op
// implementations for when they are disabled.
package observability

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// NewLogger builds a slog.Logger writing to w.
// format is "text" or "json"; level is debug, info, warn or error.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
}

// LogExtractStart logs the start of an extraction. The credential itself is
// never logged, only whether one is present.
func LogExtractStart(logger *slog.Logger, requestID string, inputLen int, credential bool) {
	if logger == nil {
		return
	}
	logger.Info("extraction starting",
		slog.String("request_id", requestID),
		slog.Int("input_len", inputLen),
		slog.Bool("credential_present", credential),
	)
}

// LogExtractComplete logs a successful extraction.
func LogExtractComplete(logger *slog.Logger, requestID, source string, nodes int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("extraction completed",
		slog.String("request_id", requestID),
		slog.String("source", source),
		slog.Int("nodes", nodes),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogExtractError logs a failed extraction.
func LogExtractError(logger *slog.Logger, requestID, kind string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("extraction failed",
		slog.String("request_id", requestID),
		slog.String("kind", kind),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogFallback logs a switch to a degraded strategy.
func LogFallback(logger *slog.Logger, requestID, reason string, err error) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.String("request_id", requestID),
		slog.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.Warn("falling back to sentence split", attrs...)
}

// LogStaleResult logs a completed extraction that lost to a newer one.
func LogStaleResult(logger *slog.Logger, token, newest uint64) {
	if logger == nil {
		return
	}
	logger.Debug("discarding stale extraction result",
		slog.Uint64("token", token),
		slog.Uint64("newest", newest),
	)
}

// LogStage logs a pipeline stage transition.
func LogStage(logger *slog.Logger, requestID, stageID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("stage completed",
		slog.String("request_id", requestID),
		slog.String("stage", stageID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogPlacementError logs a failed drawing call. Shapes issued before the
// failure stay on the canvas.
func LogPlacementError(logger *slog.Logger, index int, kind string, issued int, err error) {
	if logger == nil {
		return
	}
	logger.Error("placement failed",
		slog.Int("node_index", index),
		slog.String("shape", kind),
		slog.Int("issued", issued),
		slog.String("error", err.Error()),
	)
}

// TimedOperation returns a function reporting elapsed milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
