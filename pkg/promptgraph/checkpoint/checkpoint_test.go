package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCheckpoint_New tests constructor defaults.
func TestCheckpoint_New(t *testing.T) {
	cp := New("run-1", "classify", 3, []byte(`{"q":"hi"}`), "respond")

	assert.Equal(t, Version, cp.Version)
	assert.Equal(t, "run-1", cp.RunID)
	assert.Equal(t, "classify", cp.NodeID)
	assert.Equal(t, 3, cp.Sequence)
	assert.Equal(t, "respond", cp.NextNode)
	assert.Equal(t, 1, cp.Attempt)
	assert.False(t, cp.Timestamp.IsZero())
}

// TestCheckpoint_MarshalRoundTrip tests serialization.
func TestCheckpoint_MarshalRoundTrip(t *testing.T) {
	cp := New("run-1", "classify", 1, []byte(`{"q":"hi"}`), "respond").
		WithAttempt(2).
		WithPrevNode("intake")

	data, err := cp.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, cp.RunID, got.RunID)
	assert.Equal(t, cp.NodeID, got.NodeID)
	assert.Equal(t, cp.NextNode, got.NextNode)
	assert.Equal(t, 2, got.Attempt)
	assert.Equal(t, "intake", got.PrevNodeID)
	assert.JSONEq(t, `{"q":"hi"}`, string(got.State))
}

// TestCheckpoint_UnmarshalInvalid tests the parse error path.
func TestCheckpoint_UnmarshalInvalid(t *testing.T) {
	_, err := Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}
