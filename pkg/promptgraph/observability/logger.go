// Package observability provides structured logging, metrics, and tracing
// for promptgraph runs: slog for logs, OpenTelemetry for metrics and spans.
// Everything is opt-in and has a no-op implementation, and every log helper
// tolerates a nil logger.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger returns a logger carrying run_id, node_id, and attempt.
func EnrichLogger(logger *slog.Logger, runID, nodeID string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With("run_id", runID, "node_id", nodeID, "attempt", attempt)
}

// LogRunStart logs the start of a graph run.
func LogRunStart(logger *slog.Logger, runID string) {
	if logger == nil {
		return
	}
	logger.Info("graph run starting", "run_id", runID)
}

// LogRunComplete logs successful graph run completion.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("graph run completed",
		"run_id", runID,
		"duration_ms", durationMs,
		"nodes_executed", nodeCount,
	)
}

// LogRunError logs graph run failure.
func LogRunError(logger *slog.Logger, runID string, err error, durationMs float64, lastNode string) {
	if logger == nil {
		return
	}
	logger.Error("graph run failed",
		"run_id", runID,
		"error", err.Error(),
		"duration_ms", durationMs,
		"last_node", lastNode,
	)
}

// LogNodeStart logs node execution start.
func LogNodeStart(logger *slog.Logger, nodeID string) {
	if logger == nil {
		return
	}
	logger.Debug("node starting", "node_id", nodeID)
}

// LogNodeComplete logs successful node completion.
func LogNodeComplete(logger *slog.Logger, nodeID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("node completed", "node_id", nodeID, "duration_ms", durationMs)
}

// LogNodeError logs node execution failure.
func LogNodeError(logger *slog.Logger, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Error("node failed", "node_id", nodeID, "error", err.Error())
}

// LogCheckpoint logs a saved checkpoint.
func LogCheckpoint(logger *slog.Logger, nodeID string, sizeBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("checkpoint saved", "node_id", nodeID, "size_bytes", sizeBytes)
}

// LogCheckpointError logs a non-fatal checkpoint failure.
func LogCheckpointError(logger *slog.Logger, nodeID string, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("checkpoint failed",
		"node_id", nodeID,
		"operation", op,
		"error", err.Error(),
	)
}

// LogTokenUsage logs the token cost of an LLM call made inside a node.
func LogTokenUsage(logger *slog.Logger, nodeID string, inputTokens, outputTokens int) {
	if logger == nil {
		return
	}
	logger.Debug("llm tokens",
		"node_id", nodeID,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
	)
}

// TimedOperation returns a function that reports elapsed milliseconds since
// the call to TimedOperation.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
