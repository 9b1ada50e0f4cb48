package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voltcluster/voltcluster/pkg/graph"
	"github.com/voltcluster/voltcluster/pkg/pipeline"
)

// clusterCommand creates the cluster command for full graph partitioning.
func (c *CLI) clusterCommand() *cobra.Command {
	var (
		formatsStr  string
		output      string
		noCache     bool
		interactive bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "cluster [graph.json]",
		Short: "Partition a graph into communities",
		Long: `Partition a graph into communities using the voltage method.

The graph is read from a JSON file with "nodes" and "edges" arrays. The
algorithm samples candidate communities from random source/sink pairs,
ranks nodes by how often they appear together, and extracts one community
per seed. Nodes that end up in no community are collected in a final
remainder group.

Pass --seed for reproducible output. Seeded runs are cached locally; use
--refresh to recompute.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Seeded = cmd.Flags().Changed("seed") || opts.Seeded
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runCluster(cmd.Context(), args[0], opts, output, noCache, interactive)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")

	// Cluster flags
	cmd.Flags().IntVarP(&opts.Clusters, "clusters", "k", 0, "number of communities to extract")
	cmd.Flags().IntVarP(&opts.Candidates, "candidates", "c", 0, "number of candidate communities to sample")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "candidate strategy: extremes (default), smallest")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "use node labels in DOT/SVG output")
	cmd.Flags().BoolVar(&opts.Weights, "weights", false, "show edge weights in DOT/SVG output")

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the result in a terminal UI")

	return cmd
}

// runCluster loads the graph, runs the pipeline and writes the artifacts.
func (c *CLI) runCluster(ctx context.Context, input string, opts pipeline.Options, output string, noCache, interactive bool) error {
	c.applyConfigDefaults(&opts)
	opts.Logger = c.Logger
	ctx = withLogger(ctx, c.Logger)

	if opts.Refresh && !opts.Seeded {
		printWarning("--refresh has no effect without --seed: unseeded runs are never cached")
	}

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Detecting communities...")
	spinner.Start()

	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Clustering failed")
		return err
	}
	spinner.Stop()

	printSuccess("Found %d communities", len(result.Clusters))
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, len(result.Clusters), result.CacheInfo.ClusterHit)

	if err := writeArtifacts(result.Artifacts, opts.Formats, input, output); err != nil {
		return err
	}

	if interactive {
		return browseClusters(g, result.Clusters)
	}
	return nil
}

// writeArtifacts writes each rendered format to its output file.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	multi := len(formats) > 1
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(output, input, format, multi)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
