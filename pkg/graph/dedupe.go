package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mapstead/skiptrace/pkg/common"
)

// dedupeEntities collapses duplicate entities within one normalized
// response. Providers routinely repeat the same address or relative
// across buckets. Two entities are duplicates when they share a kind
// and a canonical primary value; the first occurrence wins, keeping its
// source tag and category.
func dedupeEntities(entities []common.Entity) []common.Entity {
	if len(entities) < 2 {
		return entities
	}

	seen := make(map[string]bool, len(entities))
	out := make([]common.Entity, 0, len(entities))
	for _, e := range entities {
		key := dedupeKey(e)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

func dedupeKey(e common.Entity) string {
	primary := canonical(DisplayValue(e))
	if primary != "" {
		return string(e.Kind) + "\x00" + primary
	}
	// No displayable value: fall back to a fingerprint of all fields so
	// distinct partial records are not collapsed into one.
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(string(e.Kind))
	for _, name := range names {
		fmt.Fprintf(&b, "\x00%s=%v", name, e.Fields[name])
	}
	return b.String()
}

// canonical lowercases and collapses internal whitespace so that
// "123 Main St" and "123  MAIN ST" compare equal.
func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
