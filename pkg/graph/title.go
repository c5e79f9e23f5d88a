package graph

import (
	"strings"

	"github.com/mapstead/skiptrace/pkg/common"
)

// Fallback labels used when a node carries nothing derivable.
const (
	startFallback  = "Search Node"
	userFallback   = "User Location"
	personFallback = "Person Details"
)

// DeriveTitle computes the display label of a node. A user-supplied
// custom title always wins and short-circuits every other rule,
// whatever the payload holds.
func DeriveTitle(n *common.Node) string {
	if n.CustomTitle != nil {
		return *n.CustomTitle
	}

	switch n.Type {
	case common.NodeStart, common.NodeUserFound:
		if n.Payload.Address != nil && !n.Payload.Address.Empty() {
			return JoinAddress(*n.Payload.Address)
		}
		if n.Type == common.NodeUserFound {
			return userFallback
		}
		return startFallback

	case common.NodeAPIResult:
		// The searched address stays primary over anything parsed out of
		// the response.
		if n.Payload.Address != nil && !n.Payload.Address.Empty() {
			return JoinAddress(*n.Payload.Address)
		}
		if t := titleFromEntities(resultEntities(n)); t != "" {
			return t
		}
		return strings.TrimSpace(n.Payload.APIName + " Result")

	case common.NodePeopleResult:
		entities := n.Payload.Entities
		if len(entities) == 0 {
			entities = Normalize(n.Payload.PersonData).Entities
		}
		if p, ok := FirstOfKind(entities, common.KindPerson); ok {
			if name := p.StringField("name"); name != "" {
				return name
			}
		}
		return personFallback
	}

	return string(n.Type)
}

// ShouldAutoUpdateTitle reports whether the store may recompute a
// node's title after its payload changed: only when no custom title is
// set and the node either completed its lookup or already carries
// recognizable data for its type. Evaluated fresh on every payload
// mutation, never cached, since a node transitions from "no data yet"
// to "has data" exactly once per asynchronous completion.
func ShouldAutoUpdateTitle(n *common.Node) bool {
	if n.CustomTitle != nil {
		return false
	}
	if n.HasCompleted {
		return true
	}
	return hasPayloadData(n)
}

func hasPayloadData(n *common.Node) bool {
	switch n.Type {
	case common.NodeStart, common.NodeUserFound:
		return n.Payload.Address != nil && !n.Payload.Address.Empty()
	case common.NodeAPIResult:
		if n.Payload.Address != nil && !n.Payload.Address.Empty() {
			return true
		}
		return len(n.Payload.Response) > 0 || len(n.Payload.Entities) > 0
	case common.NodePeopleResult:
		return len(n.Payload.PersonData) > 0 || len(n.Payload.Entities) > 0
	}
	return false
}

// resultEntities returns the entities backing an api-result node,
// normalizing the raw response when attachment has not populated them
// yet.
func resultEntities(n *common.Node) []common.Entity {
	if len(n.Payload.Entities) > 0 {
		return n.Payload.Entities
	}
	if len(n.Payload.Response) > 0 {
		return Normalize(n.Payload.Response).Entities
	}
	return nil
}

// titleFromEntities pulls a primary value out of normalized entities:
// a person name first, then an address.
func titleFromEntities(entities []common.Entity) string {
	if p, ok := FirstOfKind(entities, common.KindPerson); ok {
		if name := p.StringField("name"); name != "" {
			return name
		}
	}
	if a, ok := FirstOfKind(entities, common.KindAddress); ok {
		if joined := JoinAddress(entityAddress(a)); joined != "" {
			return joined
		}
	}
	return ""
}

// JoinAddress renders an address as "street, city, state, zip",
// dropping empty components entirely so the result never carries a
// leading, trailing or doubled comma.
func JoinAddress(a common.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.City, a.State, a.Zip} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
