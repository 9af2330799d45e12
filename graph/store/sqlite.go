package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite-backed Store[S], using the pure-Go
// modernc.org/sqlite driver (no cgo). Good for single-process workflows
// that need durability across restarts without standing up a server.
type SQLiteStore[S any] struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite database at path,
// enables WAL mode, and runs the store's schema migration.
func NewSQLiteStore[S any](path string) (*SQLiteStore[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy_timeout: %w", err)
	}

	s := &SQLiteStore[S]{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore[S]) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS checkpoints (
	id         TEXT PRIMARY KEY,
	thread_id  TEXT NOT NULL,
	parent_id  TEXT NOT NULL DEFAULT '',
	step       INTEGER NOT NULL,
	state      TEXT NOT NULL,
	frontier   TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	saved_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkpoints_thread ON checkpoints(thread_id, step);
`)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore[S]) Close() error { return s.db.Close() }

// Put implements Store.
func (s *SQLiteStore[S]) Put(ctx context.Context, cp Checkpoint[S]) error {
	stateJSON, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("store: marshal state: %w", err)
	}
	frontierJSON, err := json.Marshal(cp.Frontier)
	if err != nil {
		return fmt.Errorf("store: marshal frontier: %w", err)
	}
	metaJSON, err := json.Marshal(cp.Metadata)
	if err != nil {
		return fmt.Errorf("store: marshal metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO checkpoints (id, thread_id, parent_id, step, state, frontier, metadata, saved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ID, cp.ThreadID, cp.ParentID, cp.Step, string(stateJSON), string(frontierJSON), string(metaJSON), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return &DuplicateIDError{ID: cp.ID}
		}
		return fmt.Errorf("store: insert checkpoint: %w", err)
	}
	return nil
}

// GetLatest implements Store.
func (s *SQLiteStore[S]) GetLatest(ctx context.Context, threadID string) (Checkpoint[S], error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, thread_id, parent_id, step, state, frontier, metadata, saved_at
FROM checkpoints WHERE thread_id = ? ORDER BY rowid DESC LIMIT 1`, threadID)
	return scanCheckpoint[S](row)
}

// Get implements Store.
func (s *SQLiteStore[S]) Get(ctx context.Context, id string) (Checkpoint[S], error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, thread_id, parent_id, step, state, frontier, metadata, saved_at
FROM checkpoints WHERE id = ?`, id)
	return scanCheckpoint[S](row)
}

// List implements Store.
func (s *SQLiteStore[S]) List(ctx context.Context, threadID string, limit int) ([]Checkpoint[S], error) {
	query := `
SELECT id, thread_id, parent_id, step, state, frontier, metadata, saved_at
FROM checkpoints WHERE thread_id = ? ORDER BY step DESC, saved_at DESC`
	args := []any{threadID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Checkpoint[S]
	for rows.Next() {
		cp, err := scanCheckpointRows[S](rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Ancestors implements Store.
func (s *SQLiteStore[S]) Ancestors(ctx context.Context, id string) ([]Checkpoint[S], error) {
	var chain []Checkpoint[S]
	cur := id
	for cur != "" {
		cp, err := s.Get(ctx, cur)
		if err != nil {
			return nil, err
		}
		chain = append(chain, cp)
		cur = cp.ParentID
	}
	return chain, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCheckpoint[S any](row *sql.Row) (Checkpoint[S], error) {
	return scanCheckpointGeneric[S](row)
}

func scanCheckpointRows[S any](rows *sql.Rows) (Checkpoint[S], error) {
	return scanCheckpointGeneric[S](rows)
}

func scanCheckpointGeneric[S any](sc scannable) (Checkpoint[S], error) {
	var (
		cp                                Checkpoint[S]
		stateJSON, frontierJSON, metaJSON string
		savedAt                           string
	)
	err := sc.Scan(&cp.ID, &cp.ThreadID, &cp.ParentID, &cp.Step, &stateJSON, &frontierJSON, &metaJSON, &savedAt)
	if err == sql.ErrNoRows {
		return Checkpoint[S]{}, ErrNotFound
	}
	if err != nil {
		return Checkpoint[S]{}, fmt.Errorf("store: scan checkpoint: %w", err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &cp.State); err != nil {
		return Checkpoint[S]{}, fmt.Errorf("store: unmarshal state: %w", err)
	}
	if err := json.Unmarshal([]byte(frontierJSON), &cp.Frontier); err != nil {
		return Checkpoint[S]{}, fmt.Errorf("store: unmarshal frontier: %w", err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &cp.Metadata); err != nil {
		return Checkpoint[S]{}, fmt.Errorf("store: unmarshal metadata: %w", err)
	}
	cp.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
	return cp, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE") ||
		strings.Contains(msg, "Error 1062") ||
		strings.Contains(msg, "Duplicate entry")
}
