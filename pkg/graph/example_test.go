package graph_test

import (
	"fmt"

	"github.com/voltcluster/voltcluster/pkg/graph"
)

func ExampleGraph_Validate() {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: 1, Label: "alice"}, {ID: 2, Label: "bob"}},
		Edges: []graph.Edge{{From: 1, To: 2, Weight: 0.5}},
	}

	fmt.Println("Valid:", g.Validate() == nil)
	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// Valid: true
	// Nodes: 2
	// Edges: 1
}

func ExampleGraph_ToNetwork() {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: 1}, {ID: 2}, {ID: 3}},
		Edges: []graph.Edge{{From: 1, To: 2}, {From: 2, To: 3}},
	}

	net, err := g.ToNetwork()
	if err != nil {
		panic(err)
	}

	// Omitted weights default to a conductance of 1.
	w, _ := net.Weight(1, 2)
	fmt.Println("Nodes:", net.Nodes().Len())
	fmt.Println("Weight 1-2:", w)
	// Output:
	// Nodes: 3
	// Weight 1-2: 1
}
