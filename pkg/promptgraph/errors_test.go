package promptgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNodeError_Unwrap tests error chain traversal.
func TestNodeError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &NodeError{NodeID: "classify", Op: "execute", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "classify")
	assert.Contains(t, err.Error(), "execute")
}

// TestRouterError_Unwrap tests sentinel matching through RouterError.
func TestRouterError_Unwrap(t *testing.T) {
	err := &RouterError{FromNode: "classify", Returned: "", Err: ErrInvalidRouterResult}

	assert.ErrorIs(t, err, ErrInvalidRouterResult)
	assert.Contains(t, err.Error(), "classify")
}

// TestMaxIterationsError_Unwrap tests the ErrMaxIterations sentinel.
func TestMaxIterationsError_Unwrap(t *testing.T) {
	err := &MaxIterationsError{Max: 10, LastNodeID: "loop"}

	assert.ErrorIs(t, err, ErrMaxIterations)
	assert.Contains(t, err.Error(), "10")
	assert.Contains(t, err.Error(), "loop")
}

// TestCancellationError_Messages tests both cancellation phrasings.
func TestCancellationError_Messages(t *testing.T) {
	before := &CancellationError{NodeID: "answer", Cause: context.Canceled}
	assert.Contains(t, before.Error(), "cancelled before node answer")

	during := &CancellationError{NodeID: "answer", Cause: context.Canceled, WasExecuting: true}
	assert.Contains(t, during.Error(), "cancelled during node answer")

	assert.ErrorIs(t, before, context.Canceled)
}

// TestPanicError_Message tests panic formatting.
func TestPanicError_Message(t *testing.T) {
	err := &PanicError{NodeID: "tool", Value: "nil map write", Stack: "stack..."}
	assert.Contains(t, err.Error(), "tool")
	assert.Contains(t, err.Error(), "nil map write")
}

// TestCheckpointError_Unwrap tests checkpoint error wrapping.
func TestCheckpointError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := &CheckpointError{NodeID: "answer", Op: "save", Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "save")
	assert.Contains(t, err.Error(), "answer")
}
