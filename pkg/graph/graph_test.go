package graph

import (
	"bytes"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testGraph() Graph {
	return Graph{
		Nodes: []Node{{ID: 1, Label: "alice"}, {ID: 2}, {ID: 3}},
		Edges: []Edge{{From: 1, To: 2, Weight: 0.5}, {From: 2, To: 3}},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
		want error
	}{
		{"valid", testGraph(), nil},
		{"empty", Graph{}, ErrEmptyGraph},
		{
			"duplicate node",
			Graph{Nodes: []Node{{ID: 1}, {ID: 1}}},
			ErrDuplicateNodeID,
		},
		{
			"unknown endpoint",
			Graph{Nodes: []Node{{ID: 1}, {ID: 2}}, Edges: []Edge{{From: 1, To: 9}}},
			ErrUnknownEdgeEndpoint,
		},
		{
			"self loop",
			Graph{Nodes: []Node{{ID: 1}}, Edges: []Edge{{From: 1, To: 1}}},
			ErrSelfLoop,
		},
		{
			"negative weight",
			Graph{Nodes: []Node{{ID: 1}, {ID: 2}}, Edges: []Edge{{From: 1, To: 2, Weight: -1}}},
			ErrNegativeWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.g.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDisplayLabel(t *testing.T) {
	n := Node{ID: 42}
	if got := n.DisplayLabel(); got != "42" {
		t.Errorf("DisplayLabel() = %q, want %q", got, "42")
	}
	n.Label = "bob"
	if got := n.DisplayLabel(); got != "bob" {
		t.Errorf("DisplayLabel() = %q, want %q", got, "bob")
	}
}

func TestToNetwork(t *testing.T) {
	g := testGraph()
	wg, err := g.ToNetwork()
	if err != nil {
		t.Fatalf("ToNetwork: %v", err)
	}

	if got := wg.Nodes().Len(); got != 3 {
		t.Errorf("network has %d nodes, want 3", got)
	}

	// Explicit weight carried over.
	if w, ok := wg.Weight(1, 2); !ok || w != 0.5 {
		t.Errorf("Weight(1,2) = %v,%v, want 0.5,true", w, ok)
	}
	// Zero weight becomes the default conductance of 1.
	if w, ok := wg.Weight(2, 3); !ok || w != 1 {
		t.Errorf("Weight(2,3) = %v,%v, want 1,true", w, ok)
	}
	// Undirected.
	if w, ok := wg.Weight(2, 1); !ok || w != 0.5 {
		t.Errorf("Weight(2,1) = %v,%v, want 0.5,true", w, ok)
	}
}

func TestToNetworkRejectsInvalid(t *testing.T) {
	g := Graph{}
	if _, err := g.ToNetwork(); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("ToNetwork on empty graph: error = %v, want ErrEmptyGraph", err)
	}
}

func TestNetworkRoundTrip(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: 1}, {ID: 2}, {ID: 3}},
		Edges: []Edge{{From: 1, To: 2, Weight: 0.5}, {From: 2, To: 3, Weight: 1}},
	}
	wg, err := g.ToNetwork()
	if err != nil {
		t.Fatalf("ToNetwork: %v", err)
	}

	back := FromNetwork(wg)
	if !reflect.DeepEqual(back, g) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", back, g)
	}
}

func TestReadGraph(t *testing.T) {
	in := `{
	  "nodes": [{"id": 1, "label": "alice"}, {"id": 2}],
	  "edges": [{"from": 1, "to": 2, "weight": 0.5}]
	}`
	g, err := ReadGraph(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("got %d nodes, %d edges, want 2 and 1", g.NodeCount(), g.EdgeCount())
	}
	if g.Nodes[0].Label != "alice" {
		t.Errorf("label = %q, want %q", g.Nodes[0].Label, "alice")
	}
}

func TestReadGraphRejectsInvalid(t *testing.T) {
	if _, err := ReadGraph(strings.NewReader("not json")); err == nil {
		t.Error("malformed JSON should fail")
	}
	if _, err := ReadGraph(strings.NewReader(`{"nodes": []}`)); !errors.Is(err, ErrEmptyGraph) {
		t.Errorf("empty graph: error = %v, want ErrEmptyGraph", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	g := testGraph()

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if !reflect.DeepEqual(back, g) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", back, g)
	}
}

func TestFileRoundTrip(t *testing.T) {
	g := testGraph()
	path := filepath.Join(t.TempDir(), "graph.json")

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	back, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if !reflect.DeepEqual(back, g) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", back, g)
	}
}
