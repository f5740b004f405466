package promptgraph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmckinnon/promptgraph/pkg/promptgraph/checkpoint"
)

// newTestStore creates a memory checkpoint store that is closed with the
// test.
func newTestStore(t *testing.T) *checkpoint.MemoryStore {
	t.Helper()
	store := checkpoint.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// threeStepGraph builds a linear a -> b -> c -> END counter graph.
func threeStepGraph(t *testing.T) *CompiledGraph[Counter] {
	t.Helper()
	compiled, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddNode("b", increment).
		AddNode("c", increment).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)
	return compiled
}

// TestRun_SavesCheckpoints tests that every node execution checkpoints.
func TestRun_SavesCheckpoints(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	result, err := compiled.Run(testCtx(), Counter{}, WithCheckpointing(store, "run-1"))
	require.NoError(t, err)
	assert.Equal(t, 3, result.Value)

	infos, err := store.List("run-1")
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "a", infos[0].NodeID)
	assert.Equal(t, "c", infos[2].NodeID)
}

// TestResume_FromLatest tests resuming a partial run.
func TestResume_FromLatest(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	// Simulate a crash after node b: save its checkpoint by hand.
	cp := checkpoint.New("run-2", "b", 2, []byte(`{"Value":2}`), "c")
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-2", "b", data))

	result, err := compiled.Resume(testCtx(), store, "run-2")
	require.NoError(t, err)
	// Only node c runs after restore.
	assert.Equal(t, 3, result.Value)
}

// TestResume_NoCheckpoints tests the missing-run error.
func TestResume_NoCheckpoints(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	_, err := compiled.Resume(testCtx(), store, "never-ran")
	assert.ErrorIs(t, err, ErrNoCheckpoints)
}

// TestResume_ReplayNode tests re-executing the checkpointed node.
func TestResume_ReplayNode(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	cp := checkpoint.New("run-3", "b", 2, []byte(`{"Value":2}`), "c")
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-3", "b", data))

	result, err := compiled.Resume(testCtx(), store, "run-3", WithReplayNode())
	require.NoError(t, err)
	// b runs again, then c.
	assert.Equal(t, 4, result.Value)
}

// TestResumeFrom_SpecificNode tests resuming at a chosen checkpoint.
func TestResumeFrom_SpecificNode(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	// Full run, then rewind to the a checkpoint.
	_, err := compiled.Run(testCtx(), Counter{}, WithCheckpointing(store, "run-4"))
	require.NoError(t, err)

	result, err := compiled.ResumeFrom(testCtx(), store, "run-4", "a")
	require.NoError(t, err)
	// Restored Value is 1 (after a); b and c run again.
	assert.Equal(t, 3, result.Value)
}

// TestResumeFrom_MissingCheckpoint tests the not-found translation.
func TestResumeFrom_MissingCheckpoint(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	_, err := compiled.ResumeFrom(testCtx(), store, "run-5", "b")
	assert.ErrorIs(t, err, ErrNoCheckpoints)
}

// TestResume_VersionMismatch tests that foreign checkpoint versions are
// refused.
func TestResume_VersionMismatch(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	cp := checkpoint.New("run-6", "b", 1, []byte(`{"Value":1}`), "c")
	cp.Version = 99
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-6", "b", data))

	_, err = compiled.Resume(testCtx(), store, "run-6")
	assert.ErrorIs(t, err, ErrCheckpointVersionMismatch)
}

// TestResume_CorruptState tests the state-decode error.
func TestResume_CorruptState(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	cp := checkpoint.New("run-7", "b", 1, []byte(`not json`), "c")
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-7", "b", data))

	_, err = compiled.Resume(testCtx(), store, "run-7")
	assert.ErrorIs(t, err, ErrDeserializeState)
}

// TestResume_StateOverride tests patching restored state.
func TestResume_StateOverride(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	cp := checkpoint.New("run-8", "b", 2, []byte(`{"Value":2}`), "c")
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-8", "b", data))

	result, err := compiled.Resume(testCtx(), store, "run-8",
		WithStateOverride(func(s any) any {
			c := s.(Counter)
			c.Value = 10
			return c
		}))
	require.NoError(t, err)
	assert.Equal(t, 11, result.Value)
}

// TestResume_StateValidator tests rejecting bad restored state.
func TestResume_StateValidator(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	cp := checkpoint.New("run-9", "b", 2, []byte(`{"Value":-1}`), "c")
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-9", "b", data))

	wantErr := errors.New("negative counter")
	_, err = compiled.Resume(testCtx(), store, "run-9",
		WithStateValidator(func(s any) error {
			if s.(Counter).Value < 0 {
				return wantErr
			}
			return nil
		}))
	assert.ErrorIs(t, err, wantErr)
}

// TestResume_ContinuesCheckpointing tests that a resumed run keeps saving
// with increasing sequence numbers.
func TestResume_ContinuesCheckpointing(t *testing.T) {
	store := newTestStore(t)
	compiled := threeStepGraph(t)

	cp := checkpoint.New("run-10", "a", 1, []byte(`{"Value":1}`), "b")
	data, err := cp.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save("run-10", "a", data))

	_, err = compiled.Resume(testCtx(), store, "run-10")
	require.NoError(t, err)

	infos, err := store.List("run-10")
	require.NoError(t, err)
	// a (pre-crash) plus b and c from the resumed run.
	require.Len(t, infos, 3)
	assert.Equal(t, "c", infos[len(infos)-1].NodeID)
}
