// Package pkg provides the core libraries for voltcluster community detection.
//
// # Overview
//
// Voltcluster partitions networks into communities using the Wu-Huberman
// physics approach: node pairs act as electrical terminals, nodes are scored
// by induced potential, and communities emerge from co-occurrence across many
// such experiments. The pkg directory is organized as follows:
//
//  1. [cluster] - The voltage clustering core (candidate generation, seed
//     ranking, iterative extraction)
//  2. [scoring] - Electrical-potential node scoring
//  3. [kmeans] - K-means partitioning of feature-vector maps
//  4. [graph] - Network serialization (JSON) and gonum conversion
//  5. [render] - Graphviz DOT/SVG rendering of clustered networks
//  6. [pipeline] - Orchestration (load → cluster → render) used by CLI and API
//  7. [cache], [store], [server], [config] - Infrastructure
//
// # Quick Start
//
// Load a network and cluster it:
//
//	import (
//	    "github.com/voltcluster/voltcluster/pkg/cluster"
//	    "github.com/voltcluster/voltcluster/pkg/graph"
//	    "github.com/voltcluster/voltcluster/pkg/kmeans"
//	    "github.com/voltcluster/voltcluster/pkg/scoring"
//	)
//
//	g, _ := graph.ReadGraphFile("network.json")
//	net, _ := g.ToNetwork()
//	newScorer := func(source, sink int64) (cluster.Scorer, error) {
//	    return scoring.New(net, source, sink)
//	}
//	c, _ := cluster.New(net, 10, newScorer, kmeans.New(kmeans.WithSeed(42)),
//	    cluster.WithSeed(42))
//	clusters, _ := c.Cluster(4)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/cluster/...  # Specific package
//	go test -run Example       # Examples only
//
// [cluster]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/cluster
// [scoring]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/scoring
// [kmeans]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/kmeans
// [graph]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/graph
// [render]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/cache
// [store]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/store
// [server]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/server
// [config]: https://pkg.go.dev/github.com/voltcluster/voltcluster/pkg/config
package pkg
