// Package sqlite persists session documents in the product's local
// SQLite cache. Sessions share one key/value document table with the
// rest of the application's locally cached records, which is what makes
// the "other" slice of the usage report meaningful.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mapstead/skiptrace/pkg/common"
	"github.com/mapstead/skiptrace/pkg/store"
)

const sessionKeyPrefix = "session:"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS local_documents (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at INTEGER NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS idx_local_documents_updated ON local_documents(updated_at)`,
}

// Storage implements store.SessionStorage on a local SQLite file.
type Storage struct {
	db *sql.DB
}

// Open creates or opens the local store at the given path and applies
// the schema.
func Open(ctx context.Context, path string) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach local store: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return &Storage{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) GetSession(ctx context.Context, id string) (*common.Session, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM local_documents WHERE key = ?`,
		sessionKeyPrefix+id,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %q: %w", id, err)
	}

	var session common.Session
	if err := json.Unmarshal([]byte(doc), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %q: %w", id, err)
	}
	return &session, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*common.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM local_documents WHERE key LIKE ? ORDER BY key`,
		sessionKeyPrefix+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*common.Session, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		var session common.Session
		if err := json.Unmarshal([]byte(doc), &session); err != nil {
			return nil, fmt.Errorf("failed to decode session document: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

func (s *Storage) PutSession(ctx context.Context, session *common.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %q: %w", session.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO local_documents (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sessionKeyPrefix+session.ID, string(doc), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write session %q: %w", session.ID, err)
	}
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM local_documents WHERE key = ?`,
		sessionKeyPrefix+id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session %q: %w", id, err)
	}
	return nil
}

// UnmanagedBytes sums the stored size of every non-session document in
// the shared table.
func (s *Storage) UnmanagedBytes(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(LENGTH(value)) FROM local_documents WHERE key NOT LIKE ?`,
		sessionKeyPrefix+"%",
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to measure unmanaged storage: %w", err)
	}
	return total.Int64, nil
}
