package graph

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/mapstead/skiptrace/pkg/common"
)

// OrphanNodeError is returned when node creation references a parent
// that does not exist in the session. The UI sequences creation so this
// should never fire in normal operation, but the store must not
// silently create a dangling edge.
type OrphanNodeError struct {
	NodeType common.NodeType
	ParentID string
}

func (e *OrphanNodeError) Error() string {
	if e.ParentID == "" {
		return fmt.Sprintf("node of type %q requires a parent", e.NodeType)
	}
	return fmt.Sprintf("parent node %q not found in session", e.ParentID)
}

// Store is the append-only node graph of one session. All mutations
// happen in memory; persistence is the caller's concern (handed to the
// session/quota manager). Nodes are only ever added, and parent edges
// only point at previously created ids, so the graph stays a forest by
// construction.
//
// A Store is safe for concurrent use: node creation is synchronous
// while results attach asynchronously, and a user may start a second
// search before an earlier lookup resolves.
type Store struct {
	mu      sync.Mutex
	session *common.Session
	index   map[string]*common.Node
	lastTS  int64
}

// NewStore wraps an existing session, indexing its nodes by id.
func NewStore(s *common.Session) *Store {
	st := &Store{
		session: s,
		index:   make(map[string]*common.Node, len(s.Nodes)),
	}
	for _, n := range s.Nodes {
		st.index[n.ID] = n
		if n.Timestamp > st.lastTS {
			st.lastTS = n.Timestamp
		}
	}
	return st
}

// Session returns the underlying session.
func (st *Store) Session() *common.Session {
	return st.session
}

// CreateNode appends a new node with a fresh id and a timestamp that
// never decreases within the session. Root node types (start,
// userFound) may omit parentID; every other type must name an existing
// node, otherwise an OrphanNodeError is returned.
func (st *Store) CreateNode(t common.NodeType, payload common.Payload, parentID string) (*common.Node, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	isRoot := t == common.NodeStart || t == common.NodeUserFound
	if parentID == "" && !isRoot {
		return nil, &OrphanNodeError{NodeType: t}
	}
	if parentID != "" {
		if _, ok := st.index[parentID]; !ok {
			return nil, &OrphanNodeError{NodeType: t, ParentID: parentID}
		}
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate node id: %w", err)
	}

	node := &common.Node{
		ID:        id,
		Type:      t,
		ParentID:  parentID,
		Timestamp: st.nextTimestamp(),
		Payload:   payload,
	}
	node.Title = DeriveTitle(node)

	st.session.Nodes = append(st.session.Nodes, node)
	st.index[id] = node
	return node, nil
}

// AttachResult stores the raw payload of a resolved lookup on the
// node, normalizes it into entities, marks the node completed and
// recomputes the title unless the user has overridden it.
//
// A nil return means the node id is no longer present — the session was
// deleted while the lookup was in flight — and the attach is a safe
// no-op, not an error.
func (st *Store) AttachResult(nodeID string, raw json.RawMessage) *common.Node {
	st.mu.Lock()
	defer st.mu.Unlock()

	node, ok := st.index[nodeID]
	if !ok {
		return nil
	}

	if node.Type == common.NodePeopleResult {
		node.Payload.PersonData = raw
	} else {
		node.Payload.Response = raw
	}

	res := Normalize(raw)
	node.Payload.Entities = res.Entities
	node.Payload.Counts = res.Counts
	node.HasCompleted = true

	if ShouldAutoUpdateTitle(node) {
		node.Title = DeriveTitle(node)
	}
	return node
}

// SetCustomTitle sets the user override for a node's title. The title
// is trimmed; an empty result clears the override and re-enables
// automatic derivation. This is the only path that disables automatic
// title recomputation. Returns nil for unknown node ids (benign
// no-op).
func (st *Store) SetCustomTitle(nodeID, title string) *common.Node {
	st.mu.Lock()
	defer st.mu.Unlock()

	node, ok := st.index[nodeID]
	if !ok {
		return nil
	}

	title = strings.TrimSpace(title)
	if title == "" {
		node.CustomTitle = nil
	} else {
		node.CustomTitle = &title
	}
	node.Title = DeriveTitle(node)
	return node
}

// GetSubtree returns the node and every descendant reachable through
// parent backlinks, in creation order. Children always follow their
// parent in the session's node sequence, so a single in-order pass
// suffices. Returns nil when the node id is unknown.
func (st *Store) GetSubtree(nodeID string) []*common.Node {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.index[nodeID]; !ok {
		return nil
	}

	member := map[string]bool{nodeID: true}
	var out []*common.Node
	for _, n := range st.session.Nodes {
		if n.ID == nodeID || (n.ParentID != "" && member[n.ParentID]) {
			member[n.ID] = true
			out = append(out, n)
		}
	}
	return out
}

func (st *Store) nextTimestamp() int64 {
	ts := time.Now().UnixMilli()
	if ts < st.lastTS {
		ts = st.lastTS
	}
	st.lastTS = ts
	return ts
}

// NewSession creates an empty named session with a fresh id.
func NewSession(name string) (*common.Session, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	return &common.Session{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
		Nodes:     []*common.Node{},
	}, nil
}
