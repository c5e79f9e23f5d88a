package graph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mapstead/skiptrace/pkg/common"
)

func strPtr(s string) *string {
	return &s
}

func TestJoinAddress(t *testing.T) {
	tests := []struct {
		name string
		addr common.Address
		want string
	}{
		{
			name: "all components",
			addr: common.Address{Street: "123 Main St", City: "Minneapolis", State: "MN", Zip: "55401"},
			want: "123 Main St, Minneapolis, MN, 55401",
		},
		{
			name: "missing zip drops trailing comma",
			addr: common.Address{Street: "123 Main St", City: "Minneapolis", State: "MN", Zip: ""},
			want: "123 Main St, Minneapolis, MN",
		},
		{
			name: "missing middle component",
			addr: common.Address{Street: "123 Main St", State: "MN"},
			want: "123 Main St, MN",
		},
		{
			name: "whitespace components dropped",
			addr: common.Address{Street: "  ", City: "Duluth"},
			want: "Duluth",
		},
		{
			name: "empty address",
			addr: common.Address{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinAddress(tt.addr)
			if got != tt.want {
				t.Errorf("JoinAddress() = %q, want %q", got, tt.want)
			}
			if strings.HasPrefix(got, ",") || strings.HasSuffix(got, ",") || strings.Contains(got, ",,") {
				t.Errorf("JoinAddress() = %q has a dangling or doubled comma", got)
			}
		})
	}
}

func TestDeriveTitleCustomTitleWins(t *testing.T) {
	// Custom title short-circuits everything, malformed payload included.
	node := &common.Node{
		Type:        common.NodePeopleResult,
		CustomTitle: strPtr("My Suspect"),
		Payload: common.Payload{
			PersonData: json.RawMessage(`{{{not json`),
		},
	}

	if got := DeriveTitle(node); got != "My Suspect" {
		t.Errorf("DeriveTitle() = %q, want %q", got, "My Suspect")
	}
}

func TestDeriveTitleByType(t *testing.T) {
	addr := &common.Address{Street: "123 Main St", City: "Minneapolis", State: "MN"}

	tests := []struct {
		name string
		node *common.Node
		want string
	}{
		{
			name: "start with address",
			node: &common.Node{Type: common.NodeStart, Payload: common.Payload{Address: addr}},
			want: "123 Main St, Minneapolis, MN",
		},
		{
			name: "start without address",
			node: &common.Node{Type: common.NodeStart},
			want: "Search Node",
		},
		{
			name: "userFound without address",
			node: &common.Node{Type: common.NodeUserFound},
			want: "User Location",
		},
		{
			name: "api-result prefers searched address over response",
			node: &common.Node{
				Type: common.NodeAPIResult,
				Payload: common.Payload{
					Address:  addr,
					Response: json.RawMessage(`{"personDetails":[{"name":"John Doe"}]}`),
				},
			},
			want: "123 Main St, Minneapolis, MN",
		},
		{
			name: "api-result falls back to parsed response",
			node: &common.Node{
				Type: common.NodeAPIResult,
				Payload: common.Payload{
					Response: json.RawMessage(`{"personDetails":[{"name":"John Doe"}]}`),
				},
			},
			want: "John Doe",
		},
		{
			name: "api-result generic fallback",
			node: &common.Node{
				Type:    common.NodeAPIResult,
				Payload: common.Payload{APIName: "ReversePhone"},
			},
			want: "ReversePhone Result",
		},
		{
			name: "api-result fallback without api name",
			node: &common.Node{Type: common.NodeAPIResult},
			want: "Result",
		},
		{
			name: "people-result uses first person name",
			node: &common.Node{
				Type: common.NodePeopleResult,
				Payload: common.Payload{
					PersonData: json.RawMessage(`{"Person Details":[{"personName":"Jane Roe"}]}`),
				},
			},
			want: "Jane Roe",
		},
		{
			name: "people-result fallback",
			node: &common.Node{Type: common.NodePeopleResult},
			want: "Person Details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.node); got != tt.want {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldAutoUpdateTitle(t *testing.T) {
	tests := []struct {
		name string
		node *common.Node
		want bool
	}{
		{
			name: "custom title disables updates",
			node: &common.Node{
				Type:         common.NodeAPIResult,
				CustomTitle:  strPtr("Pinned"),
				HasCompleted: true,
			},
			want: false,
		},
		{
			name: "completed node updates",
			node: &common.Node{Type: common.NodeAPIResult, HasCompleted: true},
			want: true,
		},
		{
			name: "pending node without data does not update",
			node: &common.Node{Type: common.NodeAPIResult},
			want: false,
		},
		{
			name: "pending node with recognizable data updates",
			node: &common.Node{
				Type: common.NodeAPIResult,
				Payload: common.Payload{
					Address: &common.Address{Street: "1 Elm St"},
				},
			},
			want: true,
		},
		{
			name: "people node with person data updates",
			node: &common.Node{
				Type: common.NodePeopleResult,
				Payload: common.Payload{
					PersonData: json.RawMessage(`{}`),
				},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldAutoUpdateTitle(tt.node); got != tt.want {
				t.Errorf("ShouldAutoUpdateTitle() = %v, want %v", got, tt.want)
			}
		})
	}
}
