package graph

import (
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"

	"github.com/mapstead/skiptrace/pkg/common"
)

// Result is the output of Normalize: the flat entity set extracted from
// one raw response plus per-kind counts for summary display. Counts
// cover the typed kinds only; a passthrough status entity is not
// counted.
type Result struct {
	Entities []common.Entity     `json:"entities"`
	Counts   map[common.Kind]int `json:"counts"`
}

// Normalize converts one raw lookup response into typed entities. It is
// a pure function and never fails: malformed input, unknown shapes and
// missing fields all degrade to fewer (possibly zero) entities. One bad
// provider payload must never halt an investigation in progress.
//
// Recognized buckets fan out into one entity per entry, tagged with the
// bucket key that matched as provenance. A bucket holding a single
// object instead of an array is treated as a one-element array. When no
// bucket matches at all, a status/message shape at the top level passes
// through as a single status entity.
func Normalize(raw []byte) Result {
	res := Result{
		Entities: []common.Entity{},
		Counts:   make(map[common.Kind]int),
	}

	root, ok := parseTolerant(raw)
	if !ok || !root.IsObject() {
		return res
	}
	top := root.Map()

	for _, b := range buckets {
		val, matched, ok := probe(top, b.keys)
		if !ok {
			continue
		}
		for _, entry := range bucketEntries(val) {
			e, ok := normalizeEntry(entry, b, matched)
			if !ok {
				continue
			}
			res.Entities = append(res.Entities, e)
		}
	}

	res.Entities = dedupeEntities(res.Entities)

	if len(res.Entities) == 0 {
		if e, ok := statusEntity(top); ok {
			res.Entities = append(res.Entities, e)
		}
	}

	for _, e := range res.Entities {
		if e.Kind == common.KindStatus {
			continue
		}
		res.Counts[e.Kind]++
	}

	return res
}

// parseTolerant validates the raw bytes and, when they are not valid
// JSON, attempts a repair pass before giving up. Provider payloads
// occasionally arrive double-encoded or with unquoted keys.
func parseTolerant(raw []byte) (gjson.Result, bool) {
	input := strings.TrimSpace(string(raw))
	if input == "" {
		return gjson.Result{}, false
	}

	if gjson.Valid(input) {
		parsed := gjson.Parse(input)
		// Unwrap a double-encoded JSON string.
		if parsed.Type == gjson.String {
			inner := strings.TrimSpace(parsed.String())
			if gjson.Valid(inner) {
				return gjson.Parse(inner), true
			}
		}
		return parsed, true
	}

	repaired, err := jsonrepair.JSONRepair(input)
	if err != nil || !gjson.Valid(repaired) {
		return gjson.Result{}, false
	}
	return gjson.Parse(repaired), true
}

// bucketEntries flattens a bucket value into its entries: arrays yield
// their elements, a lone object yields itself, scalars yield themselves
// so that shapes like {"phones": "555-0100"} still normalize.
func bucketEntries(val gjson.Result) []gjson.Result {
	if val.IsArray() {
		return val.Array()
	}
	return []gjson.Result{val}
}

func normalizeEntry(entry gjson.Result, b bucket, source string) (common.Entity, bool) {
	var fields map[string]any

	if entry.IsObject() {
		fields = extractFields(entry.Map(), b.fields)
	} else if v, ok := scalarValue(entry); ok && b.primary != "" {
		fields = map[string]any{b.primary: v}
	}

	if len(fields) == 0 {
		return common.Entity{}, false
	}

	return common.Entity{
		Kind:     b.kind,
		Fields:   fields,
		Source:   source,
		Category: b.category,
	}, true
}

func statusEntity(top map[string]gjson.Result) (common.Entity, bool) {
	fields := extractFields(top, statusFields)
	if len(fields) == 0 {
		return common.Entity{}, false
	}
	return common.Entity{
		Kind:   common.KindStatus,
		Fields: fields,
		Source: "status",
	}, true
}

// DisplayValue returns the primary human-readable value of an entity:
// a person's name, a joined address, a phone number, and so on. It
// returns "" when the entity carries nothing displayable.
func DisplayValue(e common.Entity) string {
	switch e.Kind {
	case common.KindPerson:
		return e.StringField("name")
	case common.KindAddress, common.KindProperty:
		return JoinAddress(entityAddress(e))
	case common.KindPhone:
		return e.StringField("number")
	case common.KindEmail:
		return e.StringField("email")
	case common.KindImage:
		if c := e.StringField("caption"); c != "" {
			return c
		}
		return e.StringField("url")
	case common.KindStatus:
		return e.StringField("message")
	}
	return ""
}

// entityAddress rebuilds an Address value from normalized address or
// property fields.
func entityAddress(e common.Entity) common.Address {
	return common.Address{
		Street: e.StringField("street"),
		City:   e.StringField("city"),
		State:  e.StringField("state"),
		Zip:    e.StringField("postal"),
	}
}

// FirstOfKind returns the first entity of the given kind, or false.
func FirstOfKind(entities []common.Entity, kind common.Kind) (common.Entity, bool) {
	for _, e := range entities {
		if e.Kind == kind {
			return e, true
		}
	}
	return common.Entity{}, false
}
