// Package memory is an in-memory SessionStorage used by tests and
// tooling. Sessions are stored as serialized documents so reads
// round-trip through the wire format exactly like the real backends.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/mapstead/skiptrace/pkg/common"
	"github.com/mapstead/skiptrace/pkg/store"
)

// Storage implements store.SessionStorage over a map.
type Storage struct {
	mu       sync.Mutex
	sessions map[string][]byte

	// Other simulates non-session bytes sharing the medium.
	Other int64

	// FailWrites makes every PutSession fail, for exercising the
	// quota manager's loud-failure path.
	FailWrites bool
}

// NewStorage creates an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{sessions: make(map[string][]byte)}
}

func (s *Storage) GetSession(ctx context.Context, id string) (*common.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	var session common.Session
	if err := json.Unmarshal(doc, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]*common.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*common.Session, 0, len(s.sessions))
	for _, doc := range s.sessions {
		var session common.Session
		if err := json.Unmarshal(doc, &session); err != nil {
			return nil, err
		}
		out = append(out, &session)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Storage) PutSession(ctx context.Context, session *common.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return fmt.Errorf("storage medium unavailable")
	}
	doc, err := json.Marshal(session)
	if err != nil {
		return err
	}
	s.sessions[session.ID] = doc
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

func (s *Storage) UnmanagedBytes(ctx context.Context) (int64, error) {
	return s.Other, nil
}
