package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mapstead/skiptrace/pkg/common"
	"github.com/mapstead/skiptrace/pkg/store"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionCRUD(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	session := &common.Session{
		ID:        "s1",
		Name:      "first case",
		CreatedAt: 1700000000000,
		Nodes: []*common.Node{
			{ID: "n1", Type: common.NodeStart, Timestamp: 1700000000001},
			{ID: "n2", Type: common.NodeAPIResult, ParentID: "n1", Timestamp: 1700000000002},
		},
	}

	if err := s.PutSession(ctx, session); err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.Name != session.Name || len(got.Nodes) != 2 {
		t.Errorf("restored session = %+v", got)
	}
	if got.Nodes[1].ParentID != "n1" {
		t.Errorf("parent edge lost: %q", got.Nodes[1].ParentID)
	}

	// Overwrite is last-write-wins.
	session.Name = "renamed case"
	if err := s.PutSession(ctx, session); err != nil {
		t.Fatalf("PutSession() overwrite error = %v", err)
	}
	got, err = s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession() after overwrite error = %v", err)
	}
	if got.Name != "renamed case" {
		t.Errorf("name = %q, want overwrite to win", got.Name)
	}

	if err := s.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := s.GetSession(ctx, "s1"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("GetSession() after delete = %v, want ErrSessionNotFound", err)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := openTestStorage(t)

	_, err := s.GetSession(context.Background(), "nope")
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	for _, id := range []string{"a", "b", "c"} {
		err := s.PutSession(ctx, &common.Session{ID: id, Name: "case " + id})
		if err != nil {
			t.Fatalf("PutSession(%q) error = %v", id, err)
		}
	}

	sessions, err := s.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 3 {
		t.Errorf("listed %d sessions, want 3", len(sessions))
	}
}

func TestUnmanagedBytes(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	if err := s.PutSession(ctx, &common.Session{ID: "s1", Name: "case"}); err != nil {
		t.Fatalf("PutSession() error = %v", err)
	}

	// Rows outside the session prefix belong to the rest of the product.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO local_documents (key, value, updated_at) VALUES (?, ?, 0)`,
		"pins:recent", `{"pins":[1,2,3]}`,
	)
	if err != nil {
		t.Fatalf("insert unmanaged row error = %v", err)
	}

	other, err := s.UnmanagedBytes(ctx)
	if err != nil {
		t.Fatalf("UnmanagedBytes() error = %v", err)
	}
	if want := int64(len(`{"pins":[1,2,3]}`)); other != want {
		t.Errorf("unmanaged = %d, want %d", other, want)
	}
}
