package checkpoint

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps checkpoints in process memory. Intended for tests;
// everything is lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    map[string]map[string]memEntry // runID -> nodeID -> entry
	nextSeq map[string]int                 // runID -> next sequence
	closed  bool
}

type memEntry struct {
	data      []byte
	sequence  int
	timestamp time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:    make(map[string]map[string]memEntry),
		nextSeq: make(map[string]int),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(runID, nodeID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.runs[runID] == nil {
		m.runs[runID] = make(map[string]memEntry)
	}

	m.nextSeq[runID]++

	// Copy so the caller's buffer can be reused.
	stored := make([]byte, len(data))
	copy(stored, data)

	m.runs[runID][nodeID] = memEntry{
		data:      stored,
		sequence:  m.nextSeq[runID],
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(runID, nodeID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	entry, ok := m.runs[runID][nodeID]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(entry.data))
	copy(result, entry.data)
	return result, nil
}

// List implements Store.
func (m *MemoryStore) List(runID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}

	infos := make([]Info, 0, len(run))
	for nodeID, entry := range run {
		infos = append(infos, Info{
			RunID:     runID,
			NodeID:    nodeID,
			Sequence:  entry.sequence,
			Timestamp: entry.timestamp,
			Size:      int64(len(entry.data)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(runID, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if run, ok := m.runs[runID]; ok {
		delete(run, nodeID)
	}
	return nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.runs, runID)
	delete(m.nextSeq, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.runs = nil
	m.nextSeq = nil
	return nil
}

// Len reports the total number of stored checkpoints. Test helper.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.runs {
		count += len(run)
	}
	return count
}
