package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL-backed Store[S], for multi-process deployments
// that need checkpoints visible across replicas.
type MySQLStore[S any] struct {
	db *sql.DB
}

// NewMySQLStore opens a connection pool to dsn and runs the store's schema
// migration. dsn follows github.com/go-sql-driver/mysql's DSN format
// (e.g. "user:pass@tcp(127.0.0.1:3306)/dbname?parseTime=true").
func NewMySQLStore[S any](dsn string) (*MySQLStore[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open mysql: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping mysql: %w", err)
	}

	s := &MySQLStore[S]{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore[S]) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS checkpoints (
	id         VARCHAR(64) PRIMARY KEY,
	thread_id  VARCHAR(255) NOT NULL,
	parent_id  VARCHAR(64) NOT NULL DEFAULT '',
	step       INT NOT NULL,
	state      JSON NOT NULL,
	frontier   JSON NOT NULL,
	metadata   JSON NOT NULL,
	saved_at   DATETIME(6) NOT NULL,
	INDEX idx_checkpoints_thread (thread_id, step)
) ENGINE=InnoDB`)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *MySQLStore[S]) Close() error { return s.db.Close() }

// Put implements Store.
func (s *MySQLStore[S]) Put(ctx context.Context, cp Checkpoint[S]) error {
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
		cp.ID, cp.ThreadID, cp.ParentID, cp.Step, stateJSON, frontierJSON, metaJSON, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return &DuplicateIDError{ID: cp.ID}
		}
		return fmt.Errorf("store: insert checkpoint: %w", err)
	}
	return nil
}

// GetLatest implements Store.
func (s *MySQLStore[S]) GetLatest(ctx context.Context, threadID string) (Checkpoint[S], error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, thread_id, parent_id, step, state, frontier, metadata, saved_at
FROM checkpoints WHERE thread_id = ? ORDER BY saved_at DESC, step DESC LIMIT 1`, threadID)
	return scanCheckpoint[S](row)
}

// Get implements Store.
func (s *MySQLStore[S]) Get(ctx context.Context, id string) (Checkpoint[S], error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, thread_id, parent_id, step, state, frontier, metadata, saved_at
FROM checkpoints WHERE id = ?`, id)
	return scanCheckpoint[S](row)
}

// List implements Store.
func (s *MySQLStore[S]) List(ctx context.Context, threadID string, limit int) ([]Checkpoint[S], error) {
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
func (s *MySQLStore[S]) Ancestors(ctx context.Context, id string) ([]Checkpoint[S], error) {
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
