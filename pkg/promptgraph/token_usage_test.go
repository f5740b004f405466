package promptgraph

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/llm"
	"github.com/rmckinnon/promptgraph/pkg/promptgraph/module"
	"github.com/rmckinnon/promptgraph/pkg/promptgraph/observability"
)

// qaGraph builds a single-node graph whose node runs a Predict module and
// reports the call's token usage.
func qaGraph(t *testing.T) *CompiledGraph[QAState] {
	t.Helper()

	qa := module.NewPredict(module.MustParseSignature("question -> answer"))
	answer := func(ctx Context, s QAState) (QAState, error) {
		pred, err := qa.Run(ctx, ctx.LLM(), module.Inputs{"question": s.Question})
		if err != nil {
			return s, err
		}
		ctx.ReportTokenUsage(pred.Usage)
		s.Answer = pred.Get("answer")
		return s, nil
	}

	compiled, err := NewGraph[QAState]().
		AddNode("answer", answer).
		AddEdge("answer", END).
		SetEntry("answer").
		Compile()
	require.NoError(t, err)
	return compiled
}

// counterTotal sums the data points of a named Int64 counter.
func counterTotal(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %q is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %q not collected", name)
	return 0
}

// TestRun_RecordsTokenUsageMetrics tests that usage reported through the
// context reaches the run's metrics recorder.
func TestRun_RecordsTokenUsageMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	compiled := qaGraph(t)
	client := llm.NewMockClient("Answer: Paris is the capital of France.")
	ctx := NewContext(context.Background(), WithLLM(client))

	result, err := compiled.Run(ctx, QAState{Question: "What is the capital of France?"},
		WithMetrics(observability.NewMetricsRecorder()),
	)
	require.NoError(t, err)
	assert.Contains(t, result.Answer, "Paris")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.Positive(t, counterTotal(t, &rm, "promptgraph.llm.input_tokens"))
	assert.Positive(t, counterTotal(t, &rm, "promptgraph.llm.output_tokens"))
}

// TestRun_LogsTokenUsage tests that reported usage is logged through the
// run logger with its node attribution.
func TestRun_LogsTokenUsage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	compiled := qaGraph(t)
	client := llm.NewMockClient("Answer: Paris is the capital of France.")
	ctx := NewContext(context.Background(), WithLLM(client))

	_, err := compiled.Run(ctx, QAState{Question: "What is the capital of France?"},
		WithRunLogger(logger),
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "llm tokens")
	assert.Contains(t, out, "node_id=answer")
	assert.Contains(t, out, "input_tokens=")
}

// TestReportTokenUsage_OutsideRunIsNoOp tests that reporting usage on a
// bare context, with no run in progress, does nothing.
func TestReportTokenUsage_OutsideRunIsNoOp(t *testing.T) {
	ctx := NewContext(context.Background())
	assert.NotPanics(t, func() {
		ctx.ReportTokenUsage(llm.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	})
}
