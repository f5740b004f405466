package observability

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordHandler collects log records in memory for assertions.
type recordHandler struct {
	mu      sync.Mutex
	attrs   []slog.Attr
	records []capturedRecord
}

type capturedRecord struct {
	level slog.Level
	msg   string
	attrs map[string]any
}

func (h *recordHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, capturedRecord{level: r.Level, msg: r.Message, attrs: attrs})
	return nil
}

func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	// Share the record slice through the parent so captures survive With().
	return &chainedHandler{parent: h, attrs: merged}
}

func (h *recordHandler) WithGroup(string) slog.Handler { return h }

func (h *recordHandler) last(t *testing.T) capturedRecord {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.records)
	return h.records[len(h.records)-1]
}

// chainedHandler forwards records to the root handler with extra attrs.
type chainedHandler struct {
	parent *recordHandler
	attrs  []slog.Attr
}

func (h *chainedHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *chainedHandler) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	return h.parent.Handle(ctx, r)
}

func (h *chainedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &chainedHandler{parent: h.parent, attrs: merged}
}

func (h *chainedHandler) WithGroup(string) slog.Handler { return h }

// TestEnrichLogger tests run-context attribute enrichment.
func TestEnrichLogger(t *testing.T) {
	t.Run("adds run_id, node_id, and attempt", func(t *testing.T) {
		h := &recordHandler{}
		enriched := EnrichLogger(slog.New(h), "run-123", "classify", 2)
		enriched.Info("test message")

		rec := h.last(t)
		assert.Equal(t, "test message", rec.msg)
		assert.Equal(t, "run-123", rec.attrs["run_id"])
		assert.Equal(t, "classify", rec.attrs["node_id"])
		assert.Equal(t, int64(2), rec.attrs["attempt"])
	})

	t.Run("nil logger returns nil", func(t *testing.T) {
		assert.Nil(t, EnrichLogger(nil, "run-123", "classify", 1))
	})
}

// TestLogHelpers tests message, level, and attributes of each helper.
func TestLogHelpers(t *testing.T) {
	testErr := errors.New("provider unreachable")

	testCases := []struct {
		name      string
		log       func(logger *slog.Logger)
		wantLevel slog.Level
		wantMsg   string
		wantAttrs map[string]any
	}{
		{
			name:      "run start",
			log:       func(l *slog.Logger) { LogRunStart(l, "run-1") },
			wantLevel: slog.LevelInfo,
			wantMsg:   "graph run starting",
			wantAttrs: map[string]any{"run_id": "run-1"},
		},
		{
			name:      "run complete",
			log:       func(l *slog.Logger) { LogRunComplete(l, "run-1", 123.5, 4) },
			wantLevel: slog.LevelInfo,
			wantMsg:   "graph run completed",
			wantAttrs: map[string]any{"run_id": "run-1", "duration_ms": 123.5, "nodes_executed": int64(4)},
		},
		{
			name:      "run error",
			log:       func(l *slog.Logger) { LogRunError(l, "run-1", testErr, 50.0, "respond") },
			wantLevel: slog.LevelError,
			wantMsg:   "graph run failed",
			wantAttrs: map[string]any{"run_id": "run-1", "error": "provider unreachable", "last_node": "respond"},
		},
		{
			name:      "node start",
			log:       func(l *slog.Logger) { LogNodeStart(l, "classify") },
			wantLevel: slog.LevelDebug,
			wantMsg:   "node starting",
			wantAttrs: map[string]any{"node_id": "classify"},
		},
		{
			name:      "node complete",
			log:       func(l *slog.Logger) { LogNodeComplete(l, "classify", 45.7) },
			wantLevel: slog.LevelDebug,
			wantMsg:   "node completed",
			wantAttrs: map[string]any{"node_id": "classify", "duration_ms": 45.7},
		},
		{
			name:      "node error",
			log:       func(l *slog.Logger) { LogNodeError(l, "classify", testErr) },
			wantLevel: slog.LevelError,
			wantMsg:   "node failed",
			wantAttrs: map[string]any{"node_id": "classify", "error": "provider unreachable"},
		},
		{
			name:      "checkpoint saved",
			log:       func(l *slog.Logger) { LogCheckpoint(l, "classify", 1024) },
			wantLevel: slog.LevelDebug,
			wantMsg:   "checkpoint saved",
			wantAttrs: map[string]any{"node_id": "classify", "size_bytes": int64(1024)},
		},
		{
			name:      "checkpoint error",
			log:       func(l *slog.Logger) { LogCheckpointError(l, "classify", "save", testErr) },
			wantLevel: slog.LevelWarn,
			wantMsg:   "checkpoint failed",
			wantAttrs: map[string]any{"node_id": "classify", "operation": "save", "error": "provider unreachable"},
		},
		{
			name:      "token usage",
			log:       func(l *slog.Logger) { LogTokenUsage(l, "classify", 120, 35) },
			wantLevel: slog.LevelDebug,
			wantMsg:   "llm tokens",
			wantAttrs: map[string]any{"node_id": "classify", "input_tokens": int64(120), "output_tokens": int64(35)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := &recordHandler{}
			tc.log(slog.New(h))

			rec := h.last(t)
			assert.Equal(t, tc.wantLevel, rec.level)
			assert.Equal(t, tc.wantMsg, rec.msg)
			for k, v := range tc.wantAttrs {
				assert.Equal(t, v, rec.attrs[k], "attr %s", k)
			}
		})

		t.Run(tc.name+" with nil logger", func(t *testing.T) {
			assert.NotPanics(t, func() { tc.log(nil) })
		})
	}
}

// TestTimedOperation tests elapsed-time measurement.
func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(10 * time.Millisecond)
	first := done()
	assert.GreaterOrEqual(t, first, 10.0)

	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, done(), first)
}
