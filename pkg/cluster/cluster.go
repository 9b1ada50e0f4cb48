package cluster

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
)

var (
	// ErrTooFewCandidates is returned by [New] when fewer than one candidate
	// round is requested.
	ErrTooFewCandidates = errors.New("must generate at least one candidate")

	// ErrTooFewNodes is returned by [New] when the network has fewer than two
	// nodes. Candidate generation needs a source and a distinct target.
	ErrTooFewNodes = errors.New("network must have at least two nodes")

	// ErrTooFewClusters is returned by [Clusterer.Cluster] when fewer than one
	// cluster is requested.
	ErrTooFewClusters = errors.New("must request at least one cluster")

	// ErrUnknownNode is returned by [Clusterer.Community] when the given node
	// is not part of the network.
	ErrUnknownNode = errors.New("node is not in the network")

	// ErrSeedsExhausted is returned when the extraction loop runs off the end
	// of the ranked seed list while unassigned nodes remain. This indicates a
	// broken invariant, not a data-dependent termination.
	ErrSeedsExhausted = errors.New("ranked seed list exhausted")
)

// Graph is the read-only view of a network required by the Clusterer.
// Any gonum graph satisfies it. The node set must be finite and non-empty
// and support repeated iteration; the Clusterer never mutates the graph.
type Graph interface {
	Nodes() graph.Nodes
}

// Scorer assigns a scalar score to every node of the network for one
// (source, sink) terminal pair. Evaluate must be called once before Score.
// Implementations must be deterministic for a fixed network and pair.
type Scorer interface {
	Evaluate() error
	Score(id int64) float64
}

// ScorerFunc builds a Scorer for a (source, sink) pair. The source and sink
// are always distinct nodes of the network the Clusterer was created with.
type ScorerFunc func(source, sink int64) (Scorer, error)

// Partitioner splits a node → feature-vector map into exactly k non-empty,
// disjoint groups whose union is the input key set. Any returned error is
// treated as "not enough distinct values to form k groups" and recovered
// locally: the Clusterer skips the current candidate round or stops the
// extraction loop, it never surfaces the error to the caller.
type Partitioner interface {
	Partition(features map[int64][]float64, k int) ([]map[int64][]float64, error)
}

// CandidateStrategy selects how candidate communities are derived from the
// scores of one (source, sink) round.
type CandidateStrategy int

const (
	// StrategyExtremes partitions the scores into three bands and keeps the
	// two smaller bands. On a one-dimensional voltage gradient these are the
	// low and high ends, which hug the source and sink communities; the large
	// middle band is discarded as noise.
	StrategyExtremes CandidateStrategy = iota

	// StrategySmallest partitions the scores into two bands and keeps only
	// the smaller one as the single trusted candidate of the round.
	StrategySmallest
)

// Option configures a Clusterer.
type Option func(*Clusterer)

// WithSeed seeds the random source so that runs are reproducible.
// Without it the source is seeded from entropy and two runs on the same
// network will generally produce different partitions.
func WithSeed(seed uint64) Option {
	return func(c *Clusterer) { c.rng = rand.New(rand.NewSource(seed)) }
}

// WithStrategy selects the candidate-generation strategy.
// The default is [StrategyExtremes].
func WithStrategy(s CandidateStrategy) Option {
	return func(c *Clusterer) { c.strategy = s }
}

// WithLogger attaches a logger for debug-level progress output.
func WithLogger(l *log.Logger) Option {
	return func(c *Clusterer) {
		if l != nil {
			c.logger = l
		}
	}
}

// Clusterer partitions the nodes of a network into communities based on
// their voltage scores.
//
// A Clusterer is not safe for concurrent use: its random source is advanced
// sequentially across calls. The network must not be mutated for the
// duration of a call.
type Clusterer struct {
	g          Graph
	nodes      []int64 // ascending snapshot of the node set
	candidates int
	strategy   CandidateStrategy
	newScorer  ScorerFunc
	part       Partitioner
	rng        *rand.Rand
	logger     *log.Logger
}

// New creates a Clusterer that generates numCandidates candidate rounds per
// call, scoring node pairs with newScorer and splitting score maps with part.
//
// Returns [ErrTooFewCandidates] if numCandidates < 1 and [ErrTooFewNodes] if
// the network has fewer than two nodes.
func New(g Graph, numCandidates int, newScorer ScorerFunc, part Partitioner, opts ...Option) (*Clusterer, error) {
	if numCandidates < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewCandidates, numCandidates)
	}
	if newScorer == nil {
		return nil, errors.New("scorer func must not be nil")
	}
	if part == nil {
		return nil, errors.New("partitioner must not be nil")
	}

	nodes := nodeIDs(g)
	if len(nodes) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewNodes, len(nodes))
	}

	c := &Clusterer{
		g:          g,
		nodes:      nodes,
		candidates: numCandidates,
		strategy:   StrategyExtremes,
		newScorer:  newScorer,
		part:       part,
		rng:        rand.New(rand.NewSource(rand.Uint64())),
		logger:     log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Cluster partitions the network into at most numClusters communities.
//
// The returned clusters are disjoint, their union is the full node set, and
// there are never more than numClusters of them. Depending on how the
// co-occurrence data splits, there may be fewer.
func (c *Clusterer) Cluster(numClusters int) ([]Set, error) {
	if numClusters < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewClusters, numClusters)
	}
	return c.cluster(0, false, numClusters)
}

// Community discovers the community centered around node v. It returns at
// most two clusters: the community containing v and, if any nodes remain,
// a catch-all cluster with everything else.
func (c *Clusterer) Community(v int64) ([]Set, error) {
	if _, ok := slices.BinarySearch(c.nodes, v); !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownNode, v)
	}
	return c.cluster(v, true, 2)
}

// cluster runs the three phases: candidate generation, seed ranking, and
// iterative extraction.
func (c *Clusterer) cluster(origin int64, hasOrigin bool, numClusters int) ([]Set, error) {
	candidates, err := c.generateCandidates(origin, hasOrigin)
	if err != nil {
		return nil, err
	}
	seeds := c.rankSeeds(candidates)

	clusters := make([]Set, 0, numClusters)
	remaining := NewSet(c.nodes...)
	seedIdx := 0

	for j := 0; j < numClusters-1; j++ {
		if remaining.Len() == 0 {
			break
		}

		var seed int64
		if j == 0 && hasOrigin {
			// The origin anchors the first cluster regardless of its rank.
			// The cursor is not advanced.
			seed = origin
		} else {
			for {
				if seedIdx >= len(seeds) {
					return nil, ErrSeedsExhausted
				}
				seed = seeds[seedIdx]
				seedIdx++
				if remaining.Has(seed) {
					break
				}
			}
		}

		counts := c.coOccurrence(candidates, seed)
		if len(counts) < 2 {
			break
		}

		highLow, err := c.part.Partition(counts, 2)
		if err != nil {
			// All remaining nodes co-occur identically with the seed:
			// nothing left to split.
			c.logger.Debug("extraction stopped", "iteration", j, "reason", err)
			break
		}

		// Ties favor the first group.
		newCluster := keysOf(highLow[0])
		if mean(highLow[0]) < mean(highLow[1]) {
			newCluster = keysOf(highLow[1])
		}

		// Assigned nodes must never be re-counted by later co-occurrence
		// rounds, so they are removed from every candidate as well.
		for _, cand := range candidates {
			cand.Subtract(newCluster)
		}
		clusters = append(clusters, newCluster)
		remaining.Subtract(newCluster)

		c.logger.Debug("extracted cluster", "iteration", j, "seed", seed, "size", newCluster.Len())
	}

	if remaining.Len() > 0 {
		clusters = append(clusters, remaining)
	}
	return clusters, nil
}

// generateCandidates runs the configured number of scoring rounds and
// collects the candidate communities they produce. Rounds whose scores
// cannot be partitioned contribute nothing.
func (c *Clusterer) generateCandidates(origin int64, hasOrigin bool) ([]Set, error) {
	var candidates []Set
	for j := 0; j < c.candidates; j++ {
		source := origin
		if !hasOrigin {
			source = c.nodes[c.randIndex()]
		}
		target := source
		for target == source {
			target = c.nodes[c.randIndex()]
		}

		scorer, err := c.newScorer(source, target)
		if err != nil {
			return nil, fmt.Errorf("score pair (%d, %d): %w", source, target, err)
		}
		if err := scorer.Evaluate(); err != nil {
			return nil, fmt.Errorf("score pair (%d, %d): %w", source, target, err)
		}

		scores := make(map[int64][]float64, len(c.nodes))
		for _, id := range c.nodes {
			scores[id] = []float64{scorer.Score(id)}
		}

		switch c.strategy {
		case StrategySmallest:
			candidates = c.addSmallestCandidate(candidates, scores)
		default:
			candidates = c.addExtremeCandidates(candidates, scores)
		}
	}
	c.logger.Debug("generated candidates", "rounds", c.candidates, "kept", len(candidates))
	return candidates, nil
}

// addExtremeCandidates splits the scores into three bands and keeps the two
// smaller bands as candidates.
//
// The branch ordering is part of the algorithm's observable behavior: when
// band sizes tie, some orderings keep nothing for the round. It is kept
// exactly as in the original formulation.
func (c *Clusterer) addExtremeCandidates(candidates []Set, scores map[int64][]float64) []Set {
	groups, err := c.part.Partition(scores, 3)
	if err != nil {
		// No valid candidates this round.
		return candidates
	}
	b01 := len(groups[0]) > len(groups[1])
	b02 := len(groups[0]) > len(groups[2])
	b12 := len(groups[1]) > len(groups[2])
	switch {
	case b01 && b02:
		candidates = append(candidates, keysOf(groups[1]), keysOf(groups[2]))
	case !b01 && b12:
		candidates = append(candidates, keysOf(groups[0]), keysOf(groups[2]))
	case !b02 && !b12:
		candidates = append(candidates, keysOf(groups[0]), keysOf(groups[1]))
	}
	return candidates
}

// addSmallestCandidate splits the scores into two bands and keeps only the
// smaller band; the larger is discarded as background.
func (c *Clusterer) addSmallestCandidate(candidates []Set, scores map[int64][]float64) []Set {
	groups, err := c.part.Partition(scores, 2)
	if err != nil {
		return candidates
	}
	if len(groups[0]) < len(groups[1]) {
		return append(candidates, keysOf(groups[0]))
	}
	return append(candidates, keysOf(groups[1]))
}

// rankSeeds orders all nodes of the network by descending number of
// appearances across the candidate communities. Ties keep ascending ID
// order; no secondary order is guaranteed to callers.
func (c *Clusterer) rankSeeds(candidates []Set) []int64 {
	counts := make(map[int64]int, len(c.nodes))
	for _, cand := range candidates {
		for id := range cand {
			counts[id]++
		}
	}

	order := slices.Clone(c.nodes)
	slices.SortStableFunc(order, func(a, b int64) int {
		return counts[b] - counts[a]
	})
	return order
}

// coOccurrence counts, for every node of the network, the number of
// candidate communities containing both the node and the seed. The counts
// are single-element vectors so the map feeds the Partitioner directly.
func (c *Clusterer) coOccurrence(candidates []Set, seed int64) map[int64][]float64 {
	counts := make(map[int64][]float64, len(c.nodes))
	for _, id := range c.nodes {
		counts[id] = []float64{0}
	}
	for _, cand := range candidates {
		if !cand.Has(seed) {
			continue
		}
		for id := range cand {
			counts[id][0]++
		}
	}
	return counts
}

// randIndex draws a uniform index into the node snapshot.
func (c *Clusterer) randIndex() int {
	return int(c.rng.Float64() * float64(len(c.nodes)))
}

func keysOf(group map[int64][]float64) Set {
	s := make(Set, len(group))
	for id := range group {
		s[id] = struct{}{}
	}
	return s
}

func mean(group map[int64][]float64) float64 {
	var sum float64
	for _, v := range group {
		sum += v[0]
	}
	return sum / float64(len(group))
}

func nodeIDs(g Graph) []int64 {
	var ids []int64
	it := g.Nodes()
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	return ids
}
