// Package cluster implements voltage-based community detection for networks.
//
// The algorithm follows the physics approach of Wu and Huberman: pairs of
// widely separated nodes are treated as the terminals of an electrical
// circuit, every node is assigned the potential induced between them, and
// nodes are grouped by potential. Repeating this for many random pairs yields
// a collection of candidate communities; the final clusters are extracted
// from how often nodes co-occur across those candidates.
//
// # Algorithm
//
// One call to [Clusterer.Cluster] runs three phases:
//
//  1. Candidate generation: pick a (source, target) node pair, score every
//     node with the configured [Scorer], and split the scores into bands
//     with the [Partitioner]. The two extreme bands become candidate
//     communities.
//  2. Seed ranking: order all nodes by how often they appear across the
//     candidate communities.
//  3. Extraction: repeatedly take the best remaining seed, split the other
//     nodes by how often they co-occur with it, and emit the high group as a
//     final cluster. Nodes never claimed end up in one catch-all cluster.
//
// The algorithm is randomized: different runs produce different (but
// typically similar) partitions unless the random source is re-seeded
// identically. It may return fewer clusters than requested, never more, and
// every node of the network appears in exactly one returned cluster.
//
// # Collaborators
//
// The scoring and partitioning primitives are capability interfaces so that
// alternative strategies can be substituted without touching the core loop.
// The reference implementations live in the scoring and kmeans packages:
//
//	newScorer := func(source, sink int64) (cluster.Scorer, error) {
//		return scoring.New(g, source, sink)
//	}
//	c, err := cluster.New(g, 10, newScorer, kmeans.New(kmeans.WithSeed(seed)),
//		cluster.WithSeed(seed))
//	if err != nil {
//		return err
//	}
//	clusters, err := c.Cluster(4)
package cluster
