package promptgraph

import (
	"log/slog"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/checkpoint"
	"github.com/rmckinnon/promptgraph/pkg/promptgraph/observability"
)

// runConfig collects per-run execution settings.
type runConfig struct {
	maxIterations int

	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool

	checkpointStore        checkpoint.Store
	runID                  string
	sequence               int
	checkpointFailureFatal bool
}

func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: 1000,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures a single Run or Resume call.
type RunOption func(*runConfig)

// WithMaxIterations caps the number of node executions per run.
// Default: 1000. The cap is what terminates runaway routing loops.
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithRunLogger sets the logger for run-level lifecycle events. Nodes log
// through the Context logger; this logger covers the executor itself.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics records node and run metrics through the given recorder.
// Use observability.NewMetricsRecorder() for OpenTelemetry metrics.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OpenTelemetry spans for the run and each node.
// The span manager uses the global tracer provider.
func WithTracing() RunOption {
	return func(c *runConfig) {
		c.tracingEnabled = true
		c.spans = observability.NewSpanManager()
	}
}

// WithCheckpointing persists state to the store after every node. The run ID
// keys the checkpoints and is required; Run fails with ErrRunIDRequired when
// a store is set without one.
func WithCheckpointing(store checkpoint.Store, runID string) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
		c.runID = runID
	}
}

// WithCheckpointFailureFatal makes checkpoint write failures abort the run.
// By default they are logged and execution continues.
func WithCheckpointFailureFatal() RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = true
	}
}

// resumeConfig collects Resume-specific settings.
type resumeConfig struct {
	replayNode    bool
	stateOverride func(any) any
	validateState func(any) error
}

// ResumeOption configures a Resume or ResumeFrom call.
type ResumeOption func(*resumeConfig)

// WithReplayNode re-executes the checkpointed node instead of continuing
// from its successor. Useful when the node's effects were lost in a crash.
func WithReplayNode() ResumeOption {
	return func(c *resumeConfig) {
		c.replayNode = true
	}
}

// WithStateOverride transforms the restored state before execution resumes.
// The function receives and must return the graph's state type.
func WithStateOverride(fn func(any) any) ResumeOption {
	return func(c *resumeConfig) {
		c.stateOverride = fn
	}
}

// WithStateValidator rejects restored state that fails validation.
func WithStateValidator(fn func(any) error) ResumeOption {
	return func(c *resumeConfig) {
		c.validateState = fn
	}
}
