package checkpoint

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// SQLiteStore persists checkpoints to a SQLite database. Suitable for
// single-process production use; WAL mode keeps resumption reads cheap
// while runs are writing.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	run_id   TEXT    NOT NULL,
	node_id  TEXT    NOT NULL,
	sequence INTEGER NOT NULL,
	saved_at INTEGER NOT NULL,
	data     BLOB    NOT NULL,
	PRIMARY KEY (run_id, node_id)
);
CREATE INDEX IF NOT EXISTS checkpoints_run_idx ON checkpoints(run_id);
`

// NewSQLiteStore opens or creates a store at path. Use ":memory:" for an
// ephemeral store in tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" stores coherent and lets the
	// pragmas below apply to every statement.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store. The sequence number is assigned as max+1 within
// the run, so saves from a resumed run keep counting where the original
// left off, and re-saving a node moves it to the end of the run's order.
func (s *SQLiteStore) Save(runID, nodeID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	const upsert = `
		INSERT INTO checkpoints (run_id, node_id, sequence, saved_at, data)
		VALUES (?1, ?2,
			COALESCE((SELECT MAX(sequence) FROM checkpoints WHERE run_id = ?1), 0) + 1,
			?3, ?4)
		ON CONFLICT(run_id, node_id) DO UPDATE SET
			sequence = (SELECT MAX(sequence) FROM checkpoints WHERE run_id = ?1) + 1,
			saved_at = ?3,
			data     = ?4`

	if _, err := s.db.Exec(upsert, runID, nodeID, time.Now().UnixNano(), data); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(runID, nodeID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var data []byte
	row := s.db.QueryRow(
		`SELECT data FROM checkpoints WHERE run_id = ? AND node_id = ?`,
		runID, nodeID,
	)
	switch err := row.Scan(&data); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return data, nil
}

// List implements Store. Results are ordered by sequence, oldest first.
func (s *SQLiteStore) List(runID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT node_id, sequence, saved_at, LENGTH(data)
		FROM checkpoints WHERE run_id = ? ORDER BY sequence`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		info := Info{RunID: runID}
		var savedAt int64
		if err := rows.Scan(&info.NodeID, &info.Sequence, &savedAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scan checkpoint info: %w", err)
		}
		info.Timestamp = time.Unix(0, savedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(runID, nodeID string) error {
	return s.exec("delete checkpoint",
		`DELETE FROM checkpoints WHERE run_id = ? AND node_id = ?`, runID, nodeID)
}

// DeleteRun implements Store.
func (s *SQLiteStore) DeleteRun(runID string) error {
	return s.exec("delete run checkpoints",
		`DELETE FROM checkpoints WHERE run_id = ?`, runID)
}

func (s *SQLiteStore) exec(op, query string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close implements Store. Closing twice is a no-op.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
