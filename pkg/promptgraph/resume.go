package promptgraph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/checkpoint"
)

// Resume continues a run from its latest checkpoint. The restored state is
// executed from the checkpoint's recorded next node.
//
// Example:
//
//	// A run crashed after the classify node; continue from its successor.
//	result, err := compiled.Resume(ctx, store, "run-123")
func (cg *CompiledGraph[S]) Resume(ctx Context, store checkpoint.Store, runID string, opts ...ResumeOption) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	cfg := resumeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	infos, err := store.List(runID)
	if err != nil {
		return zero, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(infos) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNoCheckpoints, runID)
	}

	latest := infos[len(infos)-1]
	data, err := store.Load(runID, latest.NodeID)
	if err != nil {
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, state, err := cg.restore(data, &cfg)
	if err != nil {
		return state, err
	}

	startNode := cp.NextNode
	if cfg.replayNode {
		startNode = cp.NodeID
	}

	runCfg := defaultRunConfig()
	runCfg.checkpointStore = store
	runCfg.runID = runID
	runCfg.sequence = cp.Sequence

	result, _, err := cg.runFrom(ctx, ctx, state, startNode, &runCfg)
	return result, err
}

// ResumeFrom continues a run from the checkpoint at a specific node rather
// than the latest one, for retrying a known-bad section of the graph.
func (cg *CompiledGraph[S]) ResumeFrom(ctx Context, store checkpoint.Store, runID, nodeID string, opts ...ResumeOption) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	cfg := resumeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := store.Load(runID, nodeID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return zero, fmt.Errorf("%w: %s at node %s", ErrNoCheckpoints, runID, nodeID)
		}
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, state, err := cg.restore(data, &cfg)
	if err != nil {
		return state, err
	}

	startNode := cp.NextNode
	if cfg.replayNode {
		startNode = nodeID
	}

	if startNode != END && !cg.HasNode(startNode) {
		return zero, fmt.Errorf("%w: %s", ErrInvalidResumeNode, startNode)
	}

	runCfg := defaultRunConfig()
	runCfg.checkpointStore = store
	runCfg.runID = runID
	runCfg.sequence = cp.Sequence

	result, _, err := cg.runFrom(ctx, ctx, state, startNode, &runCfg)
	return result, err
}

// restore decodes a checkpoint and applies the resume options to its state.
func (cg *CompiledGraph[S]) restore(data []byte, cfg *resumeConfig) (*checkpoint.Checkpoint, S, error) {
	var zero S

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return nil, zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cp.Version != checkpoint.Version {
		return nil, zero, fmt.Errorf("%w: got %d, expected %d",
			ErrCheckpointVersionMismatch, cp.Version, checkpoint.Version)
	}

	var state S
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return nil, zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cfg.stateOverride != nil {
		if typed, ok := cfg.stateOverride(state).(S); ok {
			state = typed
		}
	}

	if cfg.validateState != nil {
		if err := cfg.validateState(state); err != nil {
			return nil, state, fmt.Errorf("state validation failed: %w", err)
		}
	}

	return cp, state, nil
}
