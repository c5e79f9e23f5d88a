package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/mapstead/skiptrace/pkg/common"
)

// ErrSessionNotFound is returned by GetSession for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// StorageWriteError reports a failed persistence attempt: quota
// exhausted or the storage medium unavailable. Writes fail loudly and
// whole — the session stays in its last successfully persisted state,
// never truncated. Silent data loss in an investigation record is
// worse than a visible failure.
type StorageWriteError struct {
	SessionID string
	Reason    string
	Err       error
}

func (e *StorageWriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to persist session %q: %s: %v", e.SessionID, e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to persist session %q: %s", e.SessionID, e.Reason)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// SessionStorage defines the persistence boundary for investigation
// sessions. Implementations persist each session as one independent
// document (the wire format read by the map and list views) and report
// how much of the shared medium is consumed by records outside this
// feature.
type SessionStorage interface {
	GetSession(ctx context.Context, id string) (*common.Session, error)
	ListSessions(ctx context.Context) ([]*common.Session, error)
	PutSession(ctx context.Context, session *common.Session) error
	DeleteSession(ctx context.Context, id string) error

	// UnmanagedBytes reports storage consumed by the surrounding product
	// outside the session records sharing the same medium.
	UnmanagedBytes(ctx context.Context) (int64, error)
}
