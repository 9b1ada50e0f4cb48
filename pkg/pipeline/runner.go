package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/voltcluster/voltcluster/pkg/cache"
	"github.com/voltcluster/voltcluster/pkg/cluster"
	"github.com/voltcluster/voltcluster/pkg/graph"
	"github.com/voltcluster/voltcluster/pkg/kmeans"
	"github.com/voltcluster/voltcluster/pkg/observability"
	"github.com/voltcluster/voltcluster/pkg/render"
	"github.com/voltcluster/voltcluster/pkg/scoring"
	"github.com/voltcluster/voltcluster/pkg/store"
)

// DefaultTTL is how long cached cluster results live.
const DefaultTTL = 24 * time.Hour

// Runner encapsulates pipeline execution with caching and run persistence.
// Both CLI and API can use this to avoid duplicating the wiring.
//
// The Runner is stateless except for the cache, store and logger - it
// doesn't hold pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Store  store.RunStore
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner with the given cache and run store.
// If cache is nil, a NullCache is used (caching disabled).
// If st is nil, runs are not persisted.
func NewRunner(c cache.Cache, st store.RunStore, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Store:  st,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Execute runs the complete load → cluster → render pipeline.
func (r *Runner) Execute(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	// Stage 1: Load
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	result := &Result{
		RunID: uuid.NewString(),
		Graph: g,
	}
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	if data, err := graph.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	// Stage 2: Cluster
	observability.Cluster().OnRunStart(ctx, g.NodeCount(), opts.Clusters)
	clusterStart := time.Now()
	clusters, hit, err := r.ClusterWithCacheInfo(ctx, g, result.GraphHash, opts)
	result.Stats.ClusterTime = time.Since(clusterStart)
	observability.Cluster().OnRunComplete(ctx, len(clusters), result.Stats.ClusterTime, err)
	if err != nil {
		return nil, fmt.Errorf("cluster: %w", err)
	}
	result.Clusters = clusters
	result.CacheInfo.ClusterHit = hit

	r.Logger.Info("detected communities",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"clusters", len(clusters),
		"cached", hit,
		"duration", result.Stats.ClusterTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, g, clusters, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	r.saveRun(ctx, result, opts)

	return result, nil
}

// ClusterWithCacheInfo runs community detection with caching and returns
// cache hit info. Only reproducible (seeded) runs are cached.
func (r *Runner) ClusterWithCacheInfo(ctx context.Context, g graph.Graph, graphHash string, opts Options) ([][]int64, bool, error) {
	if err := opts.ValidateForCluster(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	var cacheKey string
	if opts.Deterministic() && graphHash != "" {
		cacheKey = cache.Key("cluster", graphHash,
			opts.Candidates, opts.Clusters, opts.Seed, opts.Strategy, opts.Origin)

		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				var clusters [][]int64
				if err := json.Unmarshal(data, &clusters); err == nil {
					observability.Cache().OnCacheHit(ctx, cacheKey)
					return clusters, true, nil
				}
			}
			observability.Cache().OnCacheMiss(ctx, cacheKey)
		}
	}

	clusters, err := r.Cluster(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}

	if cacheKey != "" {
		if data, err := json.Marshal(clusters); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, r.TTL); err == nil {
				observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
			}
		}
	}

	return clusters, false, nil
}

// Cluster runs community detection without caching.
func (r *Runner) Cluster(ctx context.Context, g graph.Graph, opts Options) ([][]int64, error) {
	if err := opts.ValidateForCluster(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	net, err := g.ToNetwork()
	if err != nil {
		return nil, err
	}

	newScorer := func(source, sink int64) (cluster.Scorer, error) {
		return scoring.New(net, source, sink)
	}

	var kopts []kmeans.Option
	copts := []cluster.Option{
		cluster.WithStrategy(opts.clusterStrategy()),
		cluster.WithLogger(opts.Logger),
	}
	if opts.Deterministic() {
		kopts = append(kopts, kmeans.WithSeed(opts.Seed))
		copts = append(copts, cluster.WithSeed(opts.Seed))
	}

	c, err := cluster.New(net, opts.Candidates, newScorer, kmeans.New(kopts...), copts...)
	if err != nil {
		return nil, err
	}

	var sets []cluster.Set
	if opts.IsCommunity() {
		sets, err = c.Community(*opts.Origin)
	} else {
		sets, err = c.Cluster(opts.Clusters)
	}
	if err != nil {
		return nil, err
	}

	clusters := make([][]int64, len(sets))
	for i, s := range sets {
		clusters[i] = s.IDs()
	}
	return clusters, nil
}

// Render generates artifacts for each requested format.
func (r *Runner) Render(ctx context.Context, g graph.Graph, clusters [][]int64, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		observability.Cluster().OnRenderStart(ctx, format)
		start := time.Now()
		data, err := r.renderFormat(g, clusters, format, opts)
		observability.Cluster().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func (r *Runner) renderFormat(g graph.Graph, clusters [][]int64, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(clusters, "", "  ")
	case FormatDOT:
		dot := render.ToDOT(g, clusters, render.Options{Labels: opts.Labels, Weights: opts.Weights})
		return []byte(dot), nil
	case FormatSVG:
		dot := render.ToDOT(g, clusters, render.Options{Labels: opts.Labels, Weights: opts.Weights})
		return render.RenderSVG(dot)
	default:
		return nil, fmt.Errorf("invalid format: %q", format)
	}
}

// saveRun persists the run if a store is configured. Persistence failures
// are logged but do not fail the pipeline.
func (r *Runner) saveRun(ctx context.Context, result *Result, opts Options) {
	if r.Store == nil {
		return
	}
	run := &store.Run{
		ID:        result.RunID,
		CreatedAt: time.Now().UTC(),
		GraphHash: result.GraphHash,
		Graph:     result.Graph,
		Params: store.Params{
			Candidates: opts.Candidates,
			Clusters:   opts.Clusters,
			Seed:       opts.Seed,
			Seeded:     opts.Seeded,
			Origin:     opts.Origin,
		},
		Clusters: result.Clusters,
		Elapsed:  result.Stats.ClusterTime.Milliseconds(),
	}
	if err := r.Store.Save(ctx, run); err != nil {
		r.Logger.Warn("failed to persist run", "run_id", run.ID, "error", err)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
