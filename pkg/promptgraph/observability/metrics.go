package observability

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records graph execution metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordNodeExecution records one node execution with its duration and
	// error status.
	RecordNodeExecution(ctx context.Context, nodeID string, duration time.Duration, err error)

	// RecordGraphRun records a graph run completion.
	RecordGraphRun(ctx context.Context, success bool, duration time.Duration)

	// RecordCheckpoint records a checkpoint save.
	RecordCheckpoint(ctx context.Context, nodeID string, sizeBytes int64)

	// RecordTokenUsage records the token cost of an LLM call attributed to
	// a node.
	RecordTokenUsage(ctx context.Context, nodeID string, inputTokens, outputTokens int64)
}

type otelMetrics struct {
	nodeExecutions metric.Int64Counter
	nodeLatency    metric.Float64Histogram
	nodeErrors     metric.Int64Counter
	graphRuns      metric.Int64Counter
	graphLatency   metric.Float64Histogram
	checkpointSize metric.Int64Histogram
	inputTokens    metric.Int64Counter
	outputTokens   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("promptgraph")
	var errs []error

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	latency := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name,
			metric.WithDescription(desc), metric.WithUnit("ms"))
		errs = append(errs, err)
		return h
	}

	m := &otelMetrics{
		nodeExecutions: counter("promptgraph.node.executions", "Number of node executions"),
		nodeLatency:    latency("promptgraph.node.latency_ms", "Node execution latency in milliseconds"),
		nodeErrors:     counter("promptgraph.node.errors", "Number of node execution errors"),
		graphRuns:      counter("promptgraph.graph.runs", "Number of graph runs"),
		graphLatency:   latency("promptgraph.graph.latency_ms", "Graph run latency in milliseconds"),
		inputTokens:    counter("promptgraph.llm.input_tokens", "LLM input tokens consumed"),
		outputTokens:   counter("promptgraph.llm.output_tokens", "LLM output tokens produced"),
	}

	var err error
	m.checkpointSize, err = meter.Int64Histogram("promptgraph.checkpoint.size_bytes",
		metric.WithDescription("Checkpoint size in bytes"), metric.WithUnit("By"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder backed by the global OTel
// meter provider. Configure the provider before calling:
//
//	otel.SetMeterProvider(yourProvider)
//
// If meter initialization fails, a no-op recorder is returned.
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func nodeAttrs(nodeID string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("node_id", nodeID))
}

func (m *otelMetrics) RecordNodeExecution(ctx context.Context, nodeID string, duration time.Duration, err error) {
	attrs := nodeAttrs(nodeID)
	m.nodeExecutions.Add(ctx, 1, attrs)
	m.nodeLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.nodeErrors.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordGraphRun(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.graphRuns.Add(ctx, 1, attrs)
	m.graphLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (m *otelMetrics) RecordCheckpoint(ctx context.Context, nodeID string, sizeBytes int64) {
	m.checkpointSize.Record(ctx, sizeBytes, nodeAttrs(nodeID))
}

func (m *otelMetrics) RecordTokenUsage(ctx context.Context, nodeID string, inputTokens, outputTokens int64) {
	attrs := nodeAttrs(nodeID)
	m.inputTokens.Add(ctx, inputTokens, attrs)
	m.outputTokens.Add(ctx, outputTokens, attrs)
}
