package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mapstead/skiptrace/pkg/common"
	"github.com/mapstead/skiptrace/pkg/logger"
)

// DefaultQuotaBytes mirrors the 5 MB budget browsers grant local
// storage; the persisted medium is treated as bounded, never infinite.
const DefaultQuotaBytes int64 = 5 * 1024 * 1024

// SessionUsage is the per-session slice of a usage report. Percent is
// relative to the total of all session bytes, not the quota.
type SessionUsage struct {
	SessionID string  `json:"session_id"`
	Name      string  `json:"name"`
	SizeBytes int64   `json:"size_bytes"`
	Percent   float64 `json:"percent"`
}

// UsageReport describes how the shared storage medium is split between
// sessions and the rest of the product. Byte counts are serialized JSON
// lengths, not storage-engine overhead.
type UsageReport struct {
	TotalBytes int64          `json:"total_bytes"`
	Sessions   []SessionUsage `json:"sessions"`
	OtherBytes int64          `json:"other_bytes"`
}

// Manager groups sessions over a shared, quota-bounded storage medium.
// It owns persistence, usage measurement and eviction of empty
// sessions; the node graph itself holds no I/O.
type Manager struct {
	mu      sync.Mutex
	storage SessionStorage
	quota   int64
}

// NewManager wraps a storage backend with a byte quota. A quota of
// zero or less falls back to DefaultQuotaBytes.
func NewManager(storage SessionStorage, quotaBytes int64) *Manager {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}
	return &Manager{
		storage: storage,
		quota:   quotaBytes,
	}
}

// Storage exposes the underlying backend for read paths.
func (m *Manager) Storage() SessionStorage {
	return m.storage
}

// Persist writes one session, whole, after checking the write would
// keep total session usage within quota. Persist is idempotent and
// last-write-wins at session granularity; on failure nothing is
// written and the caller gets a StorageWriteError.
func (m *Manager) Persist(ctx context.Context, session *common.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, err := json.Marshal(session)
	if err != nil {
		return &StorageWriteError{SessionID: session.ID, Reason: "serialization failed", Err: err}
	}

	others, err := m.storage.ListSessions(ctx)
	if err != nil {
		return &StorageWriteError{SessionID: session.ID, Reason: "storage unavailable", Err: err}
	}

	total := int64(len(doc))
	for _, s := range others {
		if s.ID == session.ID {
			continue
		}
		size, err := serializedSize(s)
		if err != nil {
			return &StorageWriteError{SessionID: session.ID, Reason: "storage unavailable", Err: err}
		}
		total += size
	}

	if total > m.quota {
		logger.Warn("Session write exceeds storage quota",
			"session_id", session.ID, "needed_bytes", total, "quota_bytes", m.quota)
		return &StorageWriteError{
			SessionID: session.ID,
			Reason:    fmt.Sprintf("storage quota exceeded (%d > %d bytes)", total, m.quota),
		}
	}

	if err := m.storage.PutSession(ctx, session); err != nil {
		return &StorageWriteError{SessionID: session.ID, Reason: "write failed", Err: err}
	}
	return nil
}

// MeasureUsage serializes each session independently to compute its
// byte footprint, and separately reports non-session usage of the
// medium so the user can see what the rest of the product consumes.
func (m *Manager) MeasureUsage(ctx context.Context) (*UsageReport, error) {
	sessions, err := m.storage.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	report := &UsageReport{Sessions: make([]SessionUsage, 0, len(sessions))}
	for _, s := range sessions {
		size, err := serializedSize(s)
		if err != nil {
			return nil, fmt.Errorf("failed to measure session %q: %w", s.ID, err)
		}
		report.Sessions = append(report.Sessions, SessionUsage{
			SessionID: s.ID,
			Name:      s.Name,
			SizeBytes: size,
		})
		report.TotalBytes += size
	}

	if report.TotalBytes > 0 {
		for i := range report.Sessions {
			report.Sessions[i].Percent = float64(report.Sessions[i].SizeBytes) * 100 / float64(report.TotalBytes)
		}
	}

	other, err := m.storage.UnmanagedBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to measure unmanaged storage: %w", err)
	}
	report.OtherBytes = other

	return report, nil
}

// ClearEmptySessions deletes every session holding zero nodes and
// returns how many were removed. Sessions with any node, however old
// or small, are never touched; deleting a non-empty session is always
// an explicit user action elsewhere. Idempotent: a second call right
// after the first deletes nothing.
func (m *Manager) ClearEmptySessions(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sessions, err := m.storage.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	deleted := 0
	for _, s := range sessions {
		if !s.Empty() {
			continue
		}
		if err := m.storage.DeleteSession(ctx, s.ID); err != nil {
			return deleted, fmt.Errorf("failed to evict session %q: %w", s.ID, err)
		}
		logger.Debug("Evicted empty session", "session_id", s.ID, "name", s.Name)
		deleted++
	}
	return deleted, nil
}

func serializedSize(s *common.Session) (int64, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return 0, err
	}
	return int64(len(doc)), nil
}
