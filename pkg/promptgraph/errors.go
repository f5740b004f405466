package promptgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by Compile().
var (
	// ErrNoEntryPoint indicates SetEntry was never called.
	ErrNoEntryPoint = errors.New("entry point not set")

	// ErrEntryNotFound indicates the entry point names a missing node.
	ErrEntryNotFound = errors.New("entry point node not found")

	// ErrNodeNotFound indicates an edge endpoint names a missing node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPathToEnd indicates the entry point cannot reach END.
	ErrNoPathToEnd = errors.New("no path to END from entry")
)

// Sentinel errors reported by Run().
var (
	// ErrMaxIterations indicates the step cap was exceeded.
	ErrMaxIterations = errors.New("exceeded maximum iterations")

	// ErrNilContext indicates Run or Resume received a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrInvalidRouterResult indicates a router returned an empty string.
	ErrInvalidRouterResult = errors.New("router returned empty string")

	// ErrRouterTargetNotFound indicates a router returned an unknown node ID.
	ErrRouterTargetNotFound = errors.New("router returned unknown node")
)

// Sentinel errors for checkpointing and resume.
var (
	// ErrRunIDRequired indicates checkpointing was requested without a run ID.
	ErrRunIDRequired = errors.New("run ID required for checkpointing")

	// ErrDeserializeState indicates a checkpointed state could not be decoded.
	ErrDeserializeState = errors.New("failed to deserialize state")

	// ErrNoCheckpoints indicates the run has no saved checkpoints.
	ErrNoCheckpoints = errors.New("no checkpoints found for run")

	// ErrInvalidResumeNode indicates the resume target is not in the graph.
	ErrInvalidResumeNode = errors.New("invalid resume node")

	// ErrCheckpointVersionMismatch indicates an incompatible checkpoint format.
	ErrCheckpointVersionMismatch = errors.New("checkpoint version mismatch")
)

// NodeError reports a failure inside a node, carrying the node ID and the
// operation that failed.
type NodeError struct {
	NodeID string
	Op     string // "execute", "lookup", "routing"
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// RouterError reports an invalid result from a conditional edge router.
type RouterError struct {
	// FromNode is the node whose router misbehaved.
	FromNode string
	// Returned is the value the router produced.
	Returned string
	Err      error
}

func (e *RouterError) Error() string {
	return fmt.Sprintf("router from %s returned %q: %v", e.FromNode, e.Returned, e.Err)
}

func (e *RouterError) Unwrap() error { return e.Err }

// PanicError wraps a panic recovered during node execution, preserving the
// stack trace for debugging.
type PanicError struct {
	NodeID string
	Value  any
	Stack  string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.NodeID, e.Value)
}

// CancellationError records where a run was cancelled. State holds the value
// at the point of cancellation; callers may type-assert it back to their
// state type.
type CancellationError struct {
	NodeID       string
	State        any
	Cause        error
	WasExecuting bool
}

func (e *CancellationError) Error() string {
	if e.WasExecuting {
		return fmt.Sprintf("cancelled during node %s: %v", e.NodeID, e.Cause)
	}
	return fmt.Sprintf("cancelled before node %s: %v", e.NodeID, e.Cause)
}

func (e *CancellationError) Unwrap() error { return e.Cause }

// MaxIterationsError is returned when a run exceeds its step cap, which is
// how runaway routing loops terminate.
type MaxIterationsError struct {
	Max        int
	LastNodeID string
	State      any
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("exceeded maximum iterations (%d) at node %s", e.Max, e.LastNodeID)
}

// Unwrap returns ErrMaxIterations so errors.Is works.
func (e *MaxIterationsError) Unwrap() error { return ErrMaxIterations }

// CheckpointError reports a failed checkpoint operation during a run.
type CheckpointError struct {
	NodeID string
	Op     string // "serialize", "marshal", "save"
	Err    error
}

func (e *CheckpointError) Error() string {
	return fmt.Sprintf("checkpoint %s at node %s: %v", e.Op, e.NodeID, e.Err)
}

func (e *CheckpointError) Unwrap() error { return e.Err }
