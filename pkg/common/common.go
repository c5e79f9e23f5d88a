package common

import "encoding/json"

// Kind classifies a normalized entity. The set is closed: new provider
// shapes map onto one of these kinds or degrade to KindStatus.
type Kind string

const (
	KindProperty Kind = "property"
	KindAddress  Kind = "address"
	KindPhone    Kind = "phone"
	KindEmail    Kind = "email"
	KindPerson   Kind = "person"
	KindImage    Kind = "image"

	// KindStatus is the passthrough kind used when a raw response carries
	// no recognizable buckets, only a status/message shape. It is never
	// counted against the typed kinds.
	KindStatus Kind = "status"
)

// TypedKinds lists the kinds that participate in per-kind counts,
// in display order.
var TypedKinds = []Kind{
	KindPerson,
	KindAddress,
	KindPhone,
	KindEmail,
	KindProperty,
	KindImage,
}

// Entity is a normalized fact extracted from a raw lookup response.
// Entities are value objects: Kind, Fields, Source and Category are
// fixed at construction and never mutated afterwards.
//
// Fields maps semantic field names to scalar values (strings, numbers,
// the occasional boolean). Absent fields are omitted from the map, never
// defaulted to empty values.
type Entity struct {
	Kind     Kind           `json:"kind"`
	Fields   map[string]any `json:"fields"`
	Source   string         `json:"source"`
	Category string         `json:"category,omitempty"`
}

// StringField returns the named field rendered as a string, or "" when
// the field is absent or not a string.
func (e Entity) StringField(name string) string {
	if v, ok := e.Fields[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// NodeType tags the variant of an investigation node.
type NodeType string

const (
	NodeStart        NodeType = "start"
	NodeUserFound    NodeType = "userFound"
	NodeAPIResult    NodeType = "api-result"
	NodePeopleResult NodeType = "people-result"
)

// Address is a postal address as searched or as extracted from a
// response. Empty components are simply empty strings; the title layer
// skips them when joining.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// Empty reports whether no component of the address is set.
func (a Address) Empty() bool {
	return a.Street == "" && a.City == "" && a.State == "" && a.Zip == ""
}

// LatLng is a map coordinate attached to location-bearing nodes.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Payload carries the type-specific data of a node. Which fields are
// populated depends on the node type:
//
//   - start / userFound: Address and/or Coordinates
//   - api-result: APIName, the Address that was searched, and after the
//     lookup resolves the raw Response plus derived Entities and Counts
//   - people-result: PersonData (the detail blob) plus derived Entities
//     and Counts
type Payload struct {
	Address     *Address        `json:"address,omitempty"`
	Coordinates *LatLng         `json:"coordinates,omitempty"`
	APIName     string          `json:"apiName,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
	PersonData  json.RawMessage `json:"personData,omitempty"`
	Entities    []Entity        `json:"entities,omitempty"`
	Counts      map[Kind]int    `json:"counts,omitempty"`
}

// Node is one recorded step of an investigation: a search origin, a
// lookup result, or a person-detail expansion.
//
// ParentID is a relation only, never an owning pointer: it holds the id
// of the node that produced this one, or "" for root nodes. Parent
// edges are set once at creation and never mutated, so the nodes of a
// session always form a forest of rooted trees.
//
// CustomTitle, when non-nil, is a user override; automatic title
// derivation stays disabled for the node until the override is cleared.
type Node struct {
	ID           string   `json:"id"`
	Type         NodeType `json:"type"`
	ParentID     string   `json:"parentId,omitempty"`
	Timestamp    int64    `json:"timestamp"`
	Title        string   `json:"title,omitempty"`
	CustomTitle  *string  `json:"customTitle,omitempty"`
	HasCompleted bool     `json:"hasCompleted"`
	Payload      Payload  `json:"payload"`
}

// Session is a named, independently persisted investigation thread.
// Nodes are kept in creation order; that order is the list-view render
// order and is meaningful to consumers of the serialized form.
type Session struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	CreatedAt int64   `json:"createdAt"`
	Nodes     []*Node `json:"nodes"`
}

// Empty reports whether the session holds no nodes and is therefore
// eligible for bulk eviction.
func (s *Session) Empty() bool {
	return len(s.Nodes) == 0
}

// FindNode returns the node with the given id, or nil.
func (s *Session) FindNode(id string) *Node {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
