// Package pgx mirrors session documents into PostgreSQL. Deployments
// that sync a user's investigations server-side point the session
// manager here instead of the local SQLite store.
package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mapstead/skiptrace/pkg/common"
	"github.com/mapstead/skiptrace/pkg/store"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

// SessionDBStorage implements store.SessionStorage on PostgreSQL, one
// JSONB document per session.
type SessionDBStorage struct {
	conn pgxIConn
}

const sessionSchema = `CREATE TABLE IF NOT EXISTS trace_sessions (
    id TEXT PRIMARY KEY,
    doc JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewSessionDBStorage creates the storage on an existing pool and
// ensures the schema exists.
func NewSessionDBStorage(ctx context.Context, pool *pgxpool.Pool) (*SessionDBStorage, error) {
	s := &SessionDBStorage{conn: pool}
	if _, err := s.conn.Exec(ctx, sessionSchema); err != nil {
		return nil, fmt.Errorf("failed to ensure session schema: %w", err)
	}
	return s, nil
}

func (s *SessionDBStorage) GetSession(ctx context.Context, id string) (*common.Session, error) {
	var doc []byte
	err := s.conn.QueryRow(ctx,
		`SELECT doc FROM trace_sessions WHERE id = $1`, id,
	).Scan(&doc)
	if errors.Is(err, pgxv5.ErrNoRows) {
		return nil, store.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %q: %w", id, err)
	}

	var session common.Session
	if err := json.Unmarshal(doc, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %q: %w", id, err)
	}
	return &session, nil
}

func (s *SessionDBStorage) ListSessions(ctx context.Context) ([]*common.Session, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT doc FROM trace_sessions ORDER BY doc->>'createdAt'`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]*common.Session, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		var session common.Session
		if err := json.Unmarshal(doc, &session); err != nil {
			return nil, fmt.Errorf("failed to decode session document: %w", err)
		}
		sessions = append(sessions, &session)
	}
	return sessions, rows.Err()
}

func (s *SessionDBStorage) PutSession(ctx context.Context, session *common.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %q: %w", session.ID, err)
	}

	_, err = s.conn.Exec(ctx,
		`INSERT INTO trace_sessions (id, doc, updated_at) VALUES ($1, $2, now())
         ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		session.ID, doc,
	)
	if err != nil {
		return fmt.Errorf("failed to write session %q: %w", session.ID, err)
	}
	return nil
}

func (s *SessionDBStorage) DeleteSession(ctx context.Context, id string) error {
	_, err := s.conn.Exec(ctx, `DELETE FROM trace_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session %q: %w", id, err)
	}
	return nil
}

// UnmanagedBytes is always zero here: the mirror database holds only
// session documents, so there is no other product storage to report.
func (s *SessionDBStorage) UnmanagedBytes(ctx context.Context) (int64, error) {
	return 0, nil
}
