package graph

import (
	"errors"
	"fmt"
	"slices"

	gograph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	// ErrEmptyGraph is returned by [Graph.Validate] when the graph has no nodes.
	ErrEmptyGraph = errors.New("graph has no nodes")

	// ErrDuplicateNodeID is returned by [Graph.Validate] when two nodes share
	// an ID. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist.
	ErrUnknownEdgeEndpoint = errors.New("unknown edge endpoint")

	// ErrSelfLoop is returned by [Graph.Validate] when an edge connects a
	// node to itself. Voltage scoring has no use for self conductance.
	ErrSelfLoop = errors.New("self loops are not allowed")

	// ErrNegativeWeight is returned by [Graph.Validate] when an edge carries
	// a negative weight. A zero weight is interpreted as the default of 1.
	ErrNegativeWeight = errors.New("edge weight must not be negative")
)

// =============================================================================
// Graph - Network Serialization
// =============================================================================

// Graph is the canonical serialization format for networks.
// Used for CLI input files, API requests, storage, and caching.
//
// The format is designed for round-trip fidelity: import → cluster → export
// → re-import produces identical node and edge sets.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node is a vertex of the serialized network.
type Node struct {
	ID    int64          `json:"id" bson:"id"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"` // Display label (defaults to ID)
	Meta  map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the formatted ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return fmt.Sprintf("%d", n.ID)
}

// Edge is an undirected connection between two nodes. A zero Weight is
// interpreted as the default conductance of 1.
type Edge struct {
	From   int64   `json:"from" bson:"from"`
	To     int64   `json:"to" bson:"to"`
	Weight float64 `json:"weight,omitempty" bson:"weight,omitempty"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Validate checks structural integrity and returns nil if the graph can be
// converted to a network: non-empty, unique node IDs, edges between existing
// distinct nodes, and non-negative weights.
func (g *Graph) Validate() error {
	if len(g.Nodes) == 0 {
		return ErrEmptyGraph
	}
	ids := make(map[int64]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateNodeID, n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	for _, e := range g.Edges {
		if e.From == e.To {
			return fmt.Errorf("%w: node %d", ErrSelfLoop, e.From)
		}
		if _, ok := ids[e.From]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownEdgeEndpoint, e.From)
		}
		if _, ok := ids[e.To]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownEdgeEndpoint, e.To)
		}
		if e.Weight < 0 {
			return fmt.Errorf("%w: edge %d-%d has weight %v", ErrNegativeWeight, e.From, e.To, e.Weight)
		}
	}
	return nil
}

// =============================================================================
// Graph ↔ gonum Conversion
// =============================================================================

// WeightedNetwork is the gonum view produced and consumed by the conversion
// functions. *simple.WeightedUndirectedGraph satisfies it.
type WeightedNetwork interface {
	gograph.Weighted
	WeightedEdges() gograph.WeightedEdges
}

// ToNetwork converts the serialized graph to a weighted undirected gonum
// network ready for scoring and clustering. The graph is validated first.
func (g *Graph) ToNetwork() (*simple.WeightedUndirectedGraph, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	wg := simple.NewWeightedUndirectedGraph(0, 0)
	for _, n := range g.Nodes {
		wg.AddNode(simple.Node(n.ID))
	}
	for _, e := range g.Edges {
		w := e.Weight
		if w == 0 {
			w = 1
		}
		wg.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e.From), T: simple.Node(e.To), W: w})
	}
	return wg, nil
}

// FromNetwork converts a weighted network back to the serialization format.
// Nodes and edges are sorted for deterministic output; edge endpoints are
// normalized so From < To.
func FromNetwork(wg WeightedNetwork) Graph {
	var out Graph

	it := wg.Nodes()
	for it.Next() {
		out.Nodes = append(out.Nodes, Node{ID: it.Node().ID()})
	}
	slices.SortFunc(out.Nodes, func(a, b Node) int {
		return cmpInt64(a.ID, b.ID)
	})

	eit := wg.WeightedEdges()
	for eit.Next() {
		e := eit.WeightedEdge()
		from, to := e.From().ID(), e.To().ID()
		if from > to {
			from, to = to, from
		}
		out.Edges = append(out.Edges, Edge{From: from, To: to, Weight: e.Weight()})
	}
	slices.SortFunc(out.Edges, func(a, b Edge) int {
		if a.From != b.From {
			return cmpInt64(a.From, b.From)
		}
		return cmpInt64(a.To, b.To)
	})

	return out
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
