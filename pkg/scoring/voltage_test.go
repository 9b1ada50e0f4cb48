package scoring

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/graph/simple"
)

func lineGraph(n int64) *simple.WeightedUndirectedGraph {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for id := int64(0); id < n; id++ {
		g.AddNode(simple.Node(id))
	}
	for id := int64(0); id < n-1; id++ {
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(id), T: simple.Node(id + 1), W: 1})
	}
	return g
}

func TestNewValidation(t *testing.T) {
	g := lineGraph(3)

	if _, err := New(g, 1, 1); !errors.Is(err, ErrSameTerminals) {
		t.Errorf("same terminals: error = %v, want ErrSameTerminals", err)
	}
	if _, err := New(g, 9, 1); !errors.Is(err, ErrUnknownTerminal) {
		t.Errorf("unknown source: error = %v, want ErrUnknownTerminal", err)
	}
	if _, err := New(g, 0, 9); !errors.Is(err, ErrUnknownTerminal) {
		t.Errorf("unknown sink: error = %v, want ErrUnknownTerminal", err)
	}
}

func TestScorePanicsBeforeEvaluate(t *testing.T) {
	s, err := New(lineGraph(3), 0, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("Score before Evaluate should panic")
		}
	}()
	s.Score(1)
}

func TestTerminalPotentials(t *testing.T) {
	s, err := New(lineGraph(5), 0, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got := s.Score(0); got != 1 {
		t.Errorf("source potential = %v, want 1", got)
	}
	if got := s.Score(4); got != 0 {
		t.Errorf("sink potential = %v, want 0", got)
	}
}

func TestLinePotentialsAreMonotone(t *testing.T) {
	// On a uniform line with terminals at the ends, the exact solution is a
	// linear gradient: V(i) = 1 - i/(n-1).
	const n = 5
	s, err := New(lineGraph(n), 0, n-1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	for i := int64(0); i < n; i++ {
		want := 1 - float64(i)/float64(n-1)
		if got := s.Score(i); math.Abs(got-want) > 0.02 {
			t.Errorf("Score(%d) = %v, want about %v", i, got, want)
		}
	}
	for i := int64(0); i < n-1; i++ {
		if s.Score(i) <= s.Score(i+1) {
			t.Errorf("potentials not decreasing: V(%d)=%v <= V(%d)=%v", i, s.Score(i), i+1, s.Score(i+1))
		}
	}
}

func TestWeightsSkewPotentials(t *testing.T) {
	// Triangle path 0-1-2 where the 0-1 edge is far more conductive: node 1
	// must sit much closer to the source potential than the midpoint.
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for id := int64(0); id < 3; id++ {
		g.AddNode(simple.Node(id))
	}
	g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(0), T: simple.Node(1), W: 10})
	g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(1), T: simple.Node(2), W: 1})

	s, err := New(g, 0, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Exact solution: V(1) = 10/11.
	if got, want := s.Score(1), 10.0/11.0; math.Abs(got-want) > 0.01 {
		t.Errorf("Score(1) = %v, want about %v", got, want)
	}
}

func TestIsolatedNodeStaysAtZero(t *testing.T) {
	g := lineGraph(3)
	g.AddNode(simple.Node(10))

	s, err := New(g, 0, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got := s.Score(10); got != 0 {
		t.Errorf("isolated node potential = %v, want 0", got)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	g := lineGraph(6)
	a, _ := New(g, 0, 5)
	b, _ := New(g, 0, 5)
	if err := a.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if err := b.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for i := int64(0); i < 6; i++ {
		if a.Score(i) != b.Score(i) {
			t.Errorf("Score(%d) differs between identical scorers: %v vs %v", i, a.Score(i), b.Score(i))
		}
	}
}
