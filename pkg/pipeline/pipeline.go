// Package pipeline provides the core clustering pipeline for voltcluster.
//
// This package implements the complete load → cluster → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read and validate the input graph
//  2. Cluster: Run voltage-based community detection
//  3. Render: Generate output in various formats (JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, store, logger)
//	opts := pipeline.Options{
//	    Candidates: 20,
//	    Clusters:   3,
//	    Formats:    []string{"json"},
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := result.Artifacts["json"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voltcluster/voltcluster/pkg/cluster"
	"github.com/voltcluster/voltcluster/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultCandidates is the number of candidate clusters sampled before
	// seeds are ranked. More candidates give more stable communities at the
	// cost of one voltage computation each.
	DefaultCandidates = 20

	// DefaultClusters is the default number of communities to extract.
	DefaultClusters = 2
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Strategy constants for candidate generation.
const (
	StrategyExtremes = "extremes"
	StrategySmallest = "smallest"
)

// ValidStrategies is the set of supported candidate strategies.
var ValidStrategies = map[string]bool{
	StrategyExtremes: true,
	StrategySmallest: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the clustering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Cluster options
	Candidates int    `json:"candidates,omitempty"`
	Clusters   int    `json:"clusters,omitempty"`
	Seed       uint64 `json:"seed,omitempty"`
	Seeded     bool   `json:"seeded,omitempty"` // Use Seed for reproducible runs
	Origin     *int64 `json:"origin,omitempty"` // Extract the community of this node instead of a full partition
	Strategy   string `json:"strategy,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"` // Bypass the cache even for seeded runs

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Weights bool     `json:"weights,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in the run store.
	RunID string

	// Graph is the validated input graph.
	Graph graph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Clusters holds the detected communities, members sorted ascending.
	Clusters [][]int64

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	ClusterTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ClusterHit bool // Whether the cluster result came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStrategy checks that a candidate strategy is valid.
func ValidateStrategy(strategy string) error {
	if !ValidStrategies[strategy] {
		return fmt.Errorf("invalid strategy: %q (must be one of: extremes, smallest)", strategy)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForCluster(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForCluster checks required fields for clustering.
func (o *Options) ValidateForCluster() error {
	if o.Candidates == 0 {
		o.Candidates = DefaultCandidates
	}
	if o.Candidates < 1 {
		return fmt.Errorf("candidates must be at least 1")
	}
	if o.Clusters == 0 {
		o.Clusters = DefaultClusters
	}
	if o.Clusters < 1 {
		return fmt.Errorf("clusters must be at least 1")
	}
	if o.Strategy == "" {
		o.Strategy = StrategyExtremes
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsCommunity returns true if the run extracts a single node's community
// instead of a full partition.
func (o *Options) IsCommunity() bool {
	return o.Origin != nil
}

// Deterministic returns whether the run is reproducible, and therefore
// cacheable.
func (o *Options) Deterministic() bool {
	return o.Seeded
}

// clusterStrategy maps the string option to the cluster package constant.
func (o *Options) clusterStrategy() cluster.CandidateStrategy {
	if o.Strategy == StrategySmallest {
		return cluster.StrategySmallest
	}
	return cluster.StrategyExtremes
}
