// Package checkpoint persists post-node execution snapshots so interrupted
// graph runs can be resumed. A memory store backs tests; a SQLite store
// backs single-process production use.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists checkpoints keyed by (runID, nodeID). Saving for an
// existing key overwrites. Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a checkpoint, overwriting any previous one for the same
	// run and node.
	Save(runID, nodeID string, data []byte) error

	// Load retrieves a checkpoint, or ErrNotFound.
	Load(runID, nodeID string) ([]byte, error)

	// List returns checkpoint metadata for a run ordered by sequence. A
	// run with no checkpoints yields an empty slice, not an error.
	List(runID string) ([]Info, error)

	// Delete removes one checkpoint. Deleting a missing checkpoint is not
	// an error.
	Delete(runID, nodeID string) error

	// DeleteRun removes all checkpoints for a run.
	DeleteRun(runID string) error

	// Close releases underlying resources.
	Close() error
}

// Info is checkpoint metadata, available without loading the state blob.
type Info struct {
	RunID     string
	NodeID    string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

var (
	// ErrNotFound indicates the requested checkpoint does not exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
