package cluster_test

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/voltcluster/voltcluster/pkg/cluster"
	"github.com/voltcluster/voltcluster/pkg/kmeans"
	"github.com/voltcluster/voltcluster/pkg/scoring"
)

func ExampleClusterer_Cluster() {
	// Two triangles joined by a single bridge edge.
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for id := int64(0); id < 6; id++ {
		g.AddNode(simple.Node(id))
	}
	edges := [][2]int64{{0, 1}, {1, 2}, {0, 2}, {3, 4}, {4, 5}, {3, 5}, {2, 3}}
	for _, e := range edges {
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e[0]), T: simple.Node(e[1]), W: 1})
	}

	newScorer := func(source, sink int64) (cluster.Scorer, error) {
		return scoring.New(g, source, sink)
	}

	c, err := cluster.New(g, 20, newScorer, kmeans.New(kmeans.WithSeed(42)), cluster.WithSeed(42))
	if err != nil {
		panic(err)
	}

	// A single requested cluster always returns the whole node set.
	clusters, err := c.Cluster(1)
	if err != nil {
		panic(err)
	}

	total := 0
	for _, set := range clusters {
		total += set.Len()
	}
	fmt.Println("Clusters:", len(clusters))
	fmt.Println("Members:", total)
	// Output:
	// Clusters: 1
	// Members: 6
}

func ExampleClusterer_Community() {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for id := int64(0); id < 6; id++ {
		g.AddNode(simple.Node(id))
	}
	edges := [][2]int64{{0, 1}, {1, 2}, {0, 2}, {3, 4}, {4, 5}, {3, 5}, {2, 3}}
	for _, e := range edges {
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e[0]), T: simple.Node(e[1]), W: 1})
	}

	newScorer := func(source, sink int64) (cluster.Scorer, error) {
		return scoring.New(g, source, sink)
	}

	c, err := cluster.New(g, 20, newScorer, kmeans.New(kmeans.WithSeed(7)), cluster.WithSeed(7))
	if err != nil {
		panic(err)
	}

	// The first cluster is the community built around the origin node.
	clusters, err := c.Community(0)
	if err != nil {
		panic(err)
	}
	fmt.Println("Origin in first cluster:", clusters[0].Has(0))
	// Output:
	// Origin in first cluster: true
}
