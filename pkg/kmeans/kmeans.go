// Package kmeans implements k-means partitioning of entity → feature-vector
// maps. It is the reference Partitioner for the cluster package, where it
// splits one-dimensional voltage and co-occurrence maps into bands, but it
// works for vectors of any fixed dimension.
package kmeans

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
)

// ErrNotEnoughClusters is returned by [Partitioner.Partition] when the input
// cannot be split into the requested number of non-empty groups, typically
// because it holds fewer distinct value vectors than groups requested.
var ErrNotEnoughClusters = errors.New("not enough distinct values to form clusters")

const (
	// DefaultMaxIterations bounds the assign/recompute loop of one attempt.
	DefaultMaxIterations = 100

	// DefaultTolerance is the centroid movement below which an attempt is
	// considered converged.
	DefaultTolerance = 1e-4

	// maxAttempts is the number of random initializations evaluated per
	// partition. The lowest-distortion result wins.
	maxAttempts = 50
)

// Option configures a Partitioner.
type Option func(*Partitioner)

// WithSeed seeds the random source used for centroid initialization,
// making partitions reproducible.
func WithSeed(seed uint64) Option {
	return func(p *Partitioner) { p.rng = rand.New(rand.NewSource(seed)) }
}

// WithMaxIterations overrides [DefaultMaxIterations].
func WithMaxIterations(n int) Option {
	return func(p *Partitioner) { p.maxIterations = n }
}

// WithTolerance overrides [DefaultTolerance].
func WithTolerance(eps float64) Option {
	return func(p *Partitioner) { p.tolerance = eps }
}

// Partitioner splits feature-vector maps into k groups using Lloyd's
// algorithm. It is not safe for concurrent use: the random source is
// advanced sequentially across calls.
type Partitioner struct {
	maxIterations int
	tolerance     float64
	rng           *rand.Rand
}

// New creates a Partitioner with default iteration and tolerance settings
// and an entropy-seeded random source.
func New(opts ...Option) *Partitioner {
	p := &Partitioner{
		maxIterations: DefaultMaxIterations,
		tolerance:     DefaultTolerance,
		rng:           rand.New(rand.NewSource(rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Partition splits points into exactly k non-empty, disjoint groups whose
// union is the input key set. The groups are returned in arbitrary value
// order; callers that care about which group is "high" must inspect the
// group contents.
//
// Every initialization is evaluated and the assignment with the lowest total
// within-group distortion wins. A single Lloyd's pass can converge to a poor
// local optimum (a far-off point isolated as its own band) and must never be
// accepted over a better one.
//
// Returns [ErrNotEnoughClusters] if points holds fewer than k distinct value
// vectors, or if no initialization yields k non-empty groups.
func (p *Partitioner) Partition(points map[int64][]float64, k int) ([]map[int64][]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("invalid group count %d", k)
	}
	keys := sortedKeys(points)
	if len(keys) < k {
		return nil, fmt.Errorf("%w: %d points for %d groups", ErrNotEnoughClusters, len(keys), k)
	}

	distinct := distinctValues(points, keys)
	if len(distinct) < k {
		return nil, fmt.Errorf("%w: %d distinct values for %d groups", ErrNotEnoughClusters, len(distinct), k)
	}

	var best []map[int64][]float64
	bestCost := math.Inf(1)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		groups, cost, ok := p.attempt(points, keys, distinct, k)
		if ok && cost < bestCost {
			best, bestCost = groups, cost
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no initialization produced %d non-empty groups", ErrNotEnoughClusters, k)
	}
	return best, nil
}

// attempt runs one full k-means pass and returns the converged groups with
// their total within-group squared distortion. It reports ok=false when the
// converged assignment leaves a group empty.
func (p *Partitioner) attempt(points map[int64][]float64, keys []int64, distinct [][]float64, k int) ([]map[int64][]float64, float64, bool) {
	// Initial centroids are k distinct value vectors picked at random, so
	// every centroid claims at least its own points in the first pass.
	centroids := make([][]float64, k)
	for i, di := range p.rng.Perm(len(distinct))[:k] {
		centroids[i] = slices.Clone(distinct[di])
	}

	assign := make(map[int64]int, len(keys))
	for iter := 0; iter < p.maxIterations; iter++ {
		for _, id := range keys {
			assign[id] = nearest(points[id], centroids)
		}

		moved := p.recompute(points, keys, assign, centroids)
		if moved <= p.tolerance {
			break
		}
	}

	groups := make([]map[int64][]float64, k)
	for i := range groups {
		groups[i] = make(map[int64][]float64)
	}
	var cost float64
	for _, id := range keys {
		groups[assign[id]][id] = points[id]
		d := distance(points[id], centroids[assign[id]])
		cost += d * d
	}
	for _, g := range groups {
		if len(g) == 0 {
			return nil, 0, false
		}
	}
	return groups, cost, true
}

// recompute replaces each centroid with the mean of its assigned points and
// returns the largest distance any centroid moved. Centroids that lost all
// points are re-seeded from a random distinct value.
func (p *Partitioner) recompute(points map[int64][]float64, keys []int64, assign map[int64]int, centroids [][]float64) float64 {
	dim := len(centroids[0])
	sums := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, dim)
	}
	for _, id := range keys {
		ci := assign[id]
		counts[ci]++
		for d, v := range points[id] {
			sums[ci][d] += v
		}
	}

	var moved float64
	for i := range centroids {
		var next []float64
		if counts[i] == 0 {
			// Lost cluster: re-seed somewhere populated and keep iterating.
			next = points[keys[p.rng.Intn(len(keys))]]
		} else {
			next = sums[i]
			for d := range next {
				next[d] /= float64(counts[i])
			}
		}
		if d := distance(centroids[i], next); d > moved {
			moved = d
		}
		centroids[i] = slices.Clone(next)
	}
	return moved
}

// nearest returns the index of the centroid closest to v.
// Ties resolve to the lowest index.
func nearest(v []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := distance(v, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Centroid returns the per-dimension mean of a group's value vectors.
// Returns nil for an empty group.
func Centroid(group map[int64][]float64) []float64 {
	var mean []float64
	for _, v := range group {
		if mean == nil {
			mean = make([]float64, len(v))
		}
		for d := range v {
			mean[d] += v[d]
		}
	}
	for d := range mean {
		mean[d] /= float64(len(group))
	}
	return mean
}

// sortedKeys returns the map keys in ascending order. Iterating keys in a
// fixed order keeps seeded runs reproducible.
func sortedKeys(points map[int64][]float64) []int64 {
	keys := make([]int64, 0, len(points))
	for id := range points {
		keys = append(keys, id)
	}
	slices.Sort(keys)
	return keys
}

// distinctValues returns the unique value vectors of points in first-seen
// (ascending key) order.
func distinctValues(points map[int64][]float64, keys []int64) [][]float64 {
	seen := make(map[string]struct{}, len(keys))
	var distinct [][]float64
	for _, id := range keys {
		k := vecKey(points[id])
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, points[id])
	}
	return distinct
}

func vecKey(v []float64) string {
	var b strings.Builder
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return b.String()
}
