// Package scoring computes electrical-potential node scores for networks.
//
// A [VoltageScorer] treats one node pair as the fixed-potential terminals of
// a circuit: the source is held at potential 1, the sink at 0, and every
// edge acts as a unit of conductance scaled by its weight. The potential of
// each remaining node settles to the weighted mean of its neighbours'
// potentials. Nodes better connected to the source trend toward 1, nodes
// better connected to the sink toward 0, which makes the potentials a useful
// one-dimensional community signal.
//
// Scores are deterministic for a fixed network and terminal pair. Directed
// graphs should be wrapped in graph.Undirect before scoring.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/graph"
)

var (
	// ErrSameTerminals is returned by [New] when source and sink are the
	// same node.
	ErrSameTerminals = errors.New("source and sink must differ")

	// ErrUnknownTerminal is returned by [New] when source or sink is not a
	// node of the network.
	ErrUnknownTerminal = errors.New("terminal is not in the network")
)

const (
	// DefaultMaxIterations bounds the relaxation sweeps of [VoltageScorer.Evaluate].
	DefaultMaxIterations = 100

	// DefaultTolerance is the largest per-sweep potential change at which
	// the relaxation is considered converged.
	DefaultTolerance = 0.001
)

// Option configures a VoltageScorer.
type Option func(*VoltageScorer)

// WithMaxIterations overrides [DefaultMaxIterations].
func WithMaxIterations(n int) Option {
	return func(s *VoltageScorer) { s.maxIterations = n }
}

// WithTolerance overrides [DefaultTolerance].
func WithTolerance(eps float64) Option {
	return func(s *VoltageScorer) { s.tolerance = eps }
}

// VoltageScorer assigns each node the electrical potential induced by
// holding source at 1 and sink at 0. Evaluate must be called once before
// any call to Score.
type VoltageScorer struct {
	g             graph.Weighted
	source, sink  int64
	maxIterations int
	tolerance     float64
	potentials    map[int64]float64
	evaluated     bool
}

// New creates a scorer for the given terminal pair.
// Returns [ErrSameTerminals] if source == sink and [ErrUnknownTerminal] if
// either terminal is missing from the network.
func New(g graph.Weighted, source, sink int64, opts ...Option) (*VoltageScorer, error) {
	if source == sink {
		return nil, fmt.Errorf("%w: id %d", ErrSameTerminals, source)
	}
	if g.Node(source) == nil {
		return nil, fmt.Errorf("%w: source %d", ErrUnknownTerminal, source)
	}
	if g.Node(sink) == nil {
		return nil, fmt.Errorf("%w: sink %d", ErrUnknownTerminal, sink)
	}

	s := &VoltageScorer{
		g:             g,
		source:        source,
		sink:          sink,
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Evaluate relaxes the potentials until the largest per-sweep change drops
// below the tolerance or the iteration bound is reached. Calling Evaluate
// again recomputes from scratch.
func (s *VoltageScorer) Evaluate() error {
	ids := sortedNodeIDs(s.g)

	potentials := make(map[int64]float64, len(ids))
	potentials[s.source] = 1

	for iter := 0; iter < s.maxIterations; iter++ {
		next := make(map[int64]float64, len(ids))
		next[s.source] = 1
		next[s.sink] = 0

		var delta float64
		for _, id := range ids {
			if id == s.source || id == s.sink {
				continue
			}
			v := s.neighbourMean(id, potentials)
			next[id] = v
			if d := math.Abs(v - potentials[id]); d > delta {
				delta = d
			}
		}

		potentials = next
		if delta < s.tolerance {
			break
		}
	}

	s.potentials = potentials
	s.evaluated = true
	return nil
}

// Score returns the potential of the given node.
// Score panics if Evaluate has not been called.
func (s *VoltageScorer) Score(id int64) float64 {
	if !s.evaluated {
		panic("scoring: Score called before Evaluate")
	}
	return s.potentials[id]
}

// neighbourMean returns the conductance-weighted mean of the neighbours'
// potentials. Isolated nodes keep potential 0.
func (s *VoltageScorer) neighbourMean(id int64, potentials map[int64]float64) float64 {
	var sum, total float64
	it := s.g.From(id)
	for it.Next() {
		uid := it.Node().ID()
		w, ok := s.g.Weight(uid, id)
		if !ok || w <= 0 {
			continue
		}
		sum += w * potentials[uid]
		total += w
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

func sortedNodeIDs(g graph.Graph) []int64 {
	var ids []int64
	it := g.Nodes()
	for it.Next() {
		ids = append(ids, it.Node().ID())
	}
	slices.Sort(ids)
	return ids
}
