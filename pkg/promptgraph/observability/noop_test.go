package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

// TestNoopMetrics tests that the disabled recorder is safe to call.
func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordNodeExecution(ctx, "classify", 100*time.Millisecond, nil)
		m.RecordNodeExecution(ctx, "classify", 0, errors.New("failed"))
		m.RecordGraphRun(ctx, true, 500*time.Millisecond)
		m.RecordGraphRun(ctx, false, 0)
		m.RecordCheckpoint(ctx, "classify", 1024)
		m.RecordCheckpoint(ctx, "", -1)
		m.RecordTokenUsage(ctx, "classify", 120, 35)
		m.RecordTokenUsage(ctx, "", 0, 0)
	})
}

// TestNoopSpanManager tests the disabled span manager.
func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	t.Run("contexts pass through unchanged", func(t *testing.T) {
		runCtx, runSpan := sm.StartRunSpan(ctx, "qa-pipeline", "run-1")
		assert.Equal(t, ctx, runCtx)
		assert.False(t, runSpan.IsRecording())

		nodeCtx, nodeSpan := sm.StartNodeSpan(ctx, "classify")
		assert.Equal(t, ctx, nodeCtx)
		assert.False(t, nodeSpan.IsRecording())
	})

	t.Run("span lifecycle is safe", func(t *testing.T) {
		_, span := sm.StartRunSpan(ctx, "qa-pipeline", "run-1")
		assert.NotPanics(t, func() {
			sm.AddSpanEvent(ctx, "checkpoint_saved", attribute.Int64("size", 512))
			sm.AddSpanEvent(ctx, "")
			sm.EndSpanWithError(span, nil)
			sm.EndSpanWithError(span, errors.New("late failure"))
			sm.EndSpanWithError(nil, nil)
		})
	})
}

// TestNoopImplementations_FullRunShape tests a realistic run wired entirely
// through the no-op implementations.
func TestNoopImplementations_FullRunShape(t *testing.T) {
	metrics := NoopMetrics{}
	spans := NoopSpanManager{}
	ctx := context.Background()

	runCtx, runSpan := spans.StartRunSpan(ctx, "qa-pipeline", "run-42")
	for _, nodeID := range []string{"classify", "respond"} {
		nodeCtx, nodeSpan := spans.StartNodeSpan(runCtx, nodeID)
		metrics.RecordNodeExecution(nodeCtx, nodeID, time.Millisecond, nil)
		metrics.RecordTokenUsage(nodeCtx, nodeID, 100, 20)
		metrics.RecordCheckpoint(nodeCtx, nodeID, 256)
		spans.EndSpanWithError(nodeSpan, nil)
	}
	metrics.RecordGraphRun(runCtx, true, 10*time.Millisecond)
	spans.EndSpanWithError(runSpan, nil)
}
