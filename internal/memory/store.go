// Package memory provides a persistent, windowed conversational memory
// store keyed by a session id.
//
// Histories live in an embedded SQLite file, one row per session,
// with the message list JSON-encoded. Every update and delete commits
// before returning, so a single writer always reads its own writes
// across process restarts. Concurrent processes opening the same file
// are not coordinated beyond SQLite's own locking; that is a documented
// limitation, not a supported mode.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fyrsmithlabs/ragd/internal/llm"
)

// ErrInvalidConfig indicates invalid window or store parameters.
var ErrInvalidConfig = errors.New("invalid configuration")

// Store is the durable key-value message history store.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens (creating if absent) the memory database at path.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: storage path required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS memory (
		id       TEXT PRIMARY KEY,
		messages TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: path, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Messages returns the stored history for memoryID, oldest first. An
// unknown id yields an empty slice, not an error.
func (s *Store) Messages(ctx context.Context, memoryID string) ([]llm.Message, error) {
	var encoded string
	err := s.db.QueryRowContext(ctx,
		`SELECT messages FROM memory WHERE id = ?`, memoryID,
	).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return []llm.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading memory %s: %w", memoryID, err)
	}

	var messages []llm.Message
	if err := json.Unmarshal([]byte(encoded), &messages); err != nil {
		return nil, fmt.Errorf("decoding memory %s: %w", memoryID, err)
	}
	return messages, nil
}

// Update overwrites the full message list for memoryID and commits
// before returning.
func (s *Store) Update(ctx context.Context, memoryID string, messages []llm.Message) error {
	encoded, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("encoding memory %s: %w", memoryID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO memory (id, messages) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET messages = excluded.messages`,
		memoryID, string(encoded),
	); err != nil {
		return fmt.Errorf("writing memory %s: %w", memoryID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing memory %s: %w", memoryID, err)
	}
	return nil
}

// Delete removes the entry for memoryID and commits before returning.
// Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, memoryID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM memory WHERE id = ?`, memoryID,
	); err != nil {
		return fmt.Errorf("deleting memory %s: %w", memoryID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete of %s: %w", memoryID, err)
	}
	return nil
}
