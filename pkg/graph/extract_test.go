package graph

import (
	"reflect"
	"testing"

	"github.com/mapstead/skiptrace/pkg/common"
)

func TestNormalizePersonDetails(t *testing.T) {
	raw := []byte(`{"Person Details":[{"personName":"John Doe","age":"41"}]}`)

	res := Normalize(raw)

	if len(res.Entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(res.Entities))
	}
	e := res.Entities[0]
	if e.Kind != common.KindPerson {
		t.Errorf("expected kind person, got %q", e.Kind)
	}
	if e.Source != "Person Details" {
		t.Errorf("expected source %q, got %q", "Person Details", e.Source)
	}
	want := map[string]any{"name": "John Doe", "age": "41"}
	if !reflect.DeepEqual(e.Fields, want) {
		t.Errorf("fields = %v, want %v", e.Fields, want)
	}
	if res.Counts[common.KindPerson] != 1 {
		t.Errorf("expected person count 1, got %d", res.Counts[common.KindPerson])
	}
}

func TestNormalizeKeyAliases(t *testing.T) {
	// The same logical payload under three provider generations.
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "spaced keys",
			raw:  `{"Person Details":[{"personName":"Jane Roe"}]}`,
		},
		{
			name: "camelCase keys",
			raw:  `{"personDetails":[{"name":"Jane Roe"}]}`,
		},
		{
			name: "snake_case keys",
			raw:  `{"person_details":[{"full_name":"Jane Roe"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize([]byte(tt.raw))
			if len(res.Entities) != 1 {
				t.Fatalf("expected 1 entity, got %d", len(res.Entities))
			}
			if got := res.Entities[0].StringField("name"); got != "Jane Roe" {
				t.Errorf("name = %q, want %q", got, "Jane Roe")
			}
		})
	}
}

func TestNormalizeBucketShapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		kind     common.Kind
		entities int
	}{
		{
			name:     "empty bucket yields zero entities",
			raw:      `{"phoneNumbers":[]}`,
			kind:     common.KindPhone,
			entities: 0,
		},
		{
			name:     "object bucket treated as single-element array",
			raw:      `{"Current Address":{"street":"1 Elm St","city":"Duluth"}}`,
			kind:     common.KindAddress,
			entities: 1,
		},
		{
			name:     "scalar entry maps to primary field",
			raw:      `{"phones":["555-0100","555-0101"]}`,
			kind:     common.KindPhone,
			entities: 2,
		},
		{
			name:     "entries with nothing recognizable are skipped",
			raw:      `{"emails":[{"unknown_key":1}]}`,
			kind:     common.KindEmail,
			entities: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize([]byte(tt.raw))
			if len(res.Entities) != tt.entities {
				t.Fatalf("entities = %d, want %d", len(res.Entities), tt.entities)
			}
			if res.Counts[tt.kind] != tt.entities {
				t.Errorf("count[%s] = %d, want %d", tt.kind, res.Counts[tt.kind], tt.entities)
			}
		})
	}
}

func TestNormalizeAddressCategories(t *testing.T) {
	raw := []byte(`{
        "Current Address": {"street": "12 Oak Ave", "city": "Fargo", "state": "ND"},
        "Previous Addresses": [{"street": "99 Pine Rd", "city": "Moorhead", "state": "MN"}]
    }`)

	res := Normalize(raw)

	if len(res.Entities) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(res.Entities))
	}
	if res.Entities[0].Category != "current" {
		t.Errorf("first category = %q, want %q", res.Entities[0].Category, "current")
	}
	if res.Entities[1].Category != "previous" {
		t.Errorf("second category = %q, want %q", res.Entities[1].Category, "previous")
	}
	if res.Counts[common.KindAddress] != 2 {
		t.Errorf("address count = %d, want 2", res.Counts[common.KindAddress])
	}
}

func TestNormalizeNeverErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "whitespace", raw: "   \n"},
		{name: "not json at all", raw: "<html>502 Bad Gateway</html>"},
		{name: "truncated json", raw: `{"Person Details":[{"personName":"Jo`},
		{name: "top-level array", raw: `[1,2,3]`},
		{name: "top-level scalar", raw: `42`},
		{name: "null buckets", raw: `{"personDetails":null,"phones":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize([]byte(tt.raw))
			if res.Entities == nil {
				t.Fatal("entities must never be nil")
			}
			sum := 0
			for _, n := range res.Counts {
				if n < 0 {
					t.Errorf("negative count %d", n)
				}
				sum += n
			}
			typed := 0
			for _, e := range res.Entities {
				if e.Kind != common.KindStatus {
					typed++
				}
			}
			if sum != typed {
				t.Errorf("counts sum to %d, typed entities = %d", sum, typed)
			}
		})
	}
}

func TestNormalizeRepairsMalformedJSON(t *testing.T) {
	// Unquoted keys and a trailing comma, as providers occasionally ship.
	raw := []byte(`{personDetails: [{name: "Sam Spade", age: "38",}]}`)

	res := Normalize(raw)

	if len(res.Entities) != 1 {
		t.Fatalf("expected repaired payload to normalize, got %d entities", len(res.Entities))
	}
	if got := res.Entities[0].StringField("name"); got != "Sam Spade" {
		t.Errorf("name = %q, want %q", got, "Sam Spade")
	}
}

func TestNormalizeDoubleEncodedJSON(t *testing.T) {
	raw := []byte(`"{\"personDetails\":[{\"name\":\"Eve Nash\"}]}"`)

	res := Normalize(raw)

	if len(res.Entities) != 1 {
		t.Fatalf("expected 1 entity from double-encoded payload, got %d", len(res.Entities))
	}
}

func TestNormalizeStatusPassthrough(t *testing.T) {
	raw := []byte(`{"status":"error","message":"no records found"}`)

	res := Normalize(raw)

	if len(res.Entities) != 1 {
		t.Fatalf("expected 1 passthrough entity, got %d", len(res.Entities))
	}
	e := res.Entities[0]
	if e.Kind != common.KindStatus {
		t.Fatalf("kind = %q, want status", e.Kind)
	}
	if got := e.StringField("message"); got != "no records found" {
		t.Errorf("message = %q, want %q", got, "no records found")
	}
	if len(res.Counts) != 0 {
		t.Errorf("status entity must not be counted, got %v", res.Counts)
	}
}

func TestNormalizeDedupesRepeatedEntities(t *testing.T) {
	// The same relative listed twice and once more under associates.
	raw := []byte(`{
        "Relatives": [
            {"name": "Ann Doe"},
            {"name": "ann  doe"},
            {"name": "Bob Doe"}
        ],
        "Associates": [{"name": "Ann Doe"}]
    }`)

	res := Normalize(raw)

	if res.Counts[common.KindPerson] != 2 {
		t.Fatalf("person count = %d, want 2", res.Counts[common.KindPerson])
	}
	// First occurrence wins, keeping its provenance.
	if res.Entities[0].Category != "relative" {
		t.Errorf("surviving category = %q, want %q", res.Entities[0].Category, "relative")
	}
}

func TestDisplayValue(t *testing.T) {
	tests := []struct {
		name   string
		entity common.Entity
		want   string
	}{
		{
			name: "person name",
			entity: common.Entity{
				Kind:   common.KindPerson,
				Fields: map[string]any{"name": "John Doe"},
			},
			want: "John Doe",
		},
		{
			name: "address join",
			entity: common.Entity{
				Kind:   common.KindAddress,
				Fields: map[string]any{"street": "1 Elm St", "city": "Duluth", "state": "MN"},
			},
			want: "1 Elm St, Duluth, MN",
		},
		{
			name: "image prefers caption",
			entity: common.Entity{
				Kind:   common.KindImage,
				Fields: map[string]any{"url": "https://img.example/1.jpg", "caption": "Front of house"},
			},
			want: "Front of house",
		},
		{
			name:   "nothing displayable",
			entity: common.Entity{Kind: common.KindPhone, Fields: map[string]any{}},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayValue(tt.entity); got != tt.want {
				t.Errorf("DisplayValue() = %q, want %q", got, tt.want)
			}
		})
	}
}
