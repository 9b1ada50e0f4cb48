package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltcluster/voltcluster/pkg/graph"
	"github.com/voltcluster/voltcluster/pkg/pipeline"
)

// communityCommand creates the community command, which extracts the
// community of a single node instead of a full partition.
func (c *CLI) communityCommand() *cobra.Command {
	var (
		node       int64
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "community [graph.json]",
		Short: "Find the community containing a given node",
		Long: `Find the community containing a given node.

The node is always used as the seed of the first extracted community, so
the first group in the output is the community it belongs to. The rest of
the graph falls into a single remainder group.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("node") {
				return fmt.Errorf("--node is required")
			}
			opts.Origin = &node
			opts.Seeded = cmd.Flags().Changed("seed") || opts.Seeded
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runCommunity(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().Int64VarP(&node, "node", "n", 0, "ID of the node whose community to find")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")
	cmd.Flags().IntVarP(&opts.Candidates, "candidates", "c", 0, "number of candidate communities to sample")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed for reproducible runs")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", "", "candidate strategy: extremes (default), smallest")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "use node labels in DOT/SVG output")
	cmd.Flags().BoolVar(&opts.Weights, "weights", false, "show edge weights in DOT/SVG output")

	return cmd
}

func (c *CLI) runCommunity(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	c.applyConfigDefaults(&opts)
	opts.Logger = c.Logger

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	tracker := newProgress(c.Logger)
	result, err := runner.Execute(ctx, g, opts)
	if err != nil {
		return err
	}
	tracker.done(fmt.Sprintf("Extracted community of node %d", *opts.Origin))

	if len(result.Clusters) > 0 {
		printSuccess("Community of node %d has %d members", *opts.Origin, len(result.Clusters[0]))
		printDetail("members: %v", result.Clusters[0])
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, len(result.Clusters), result.CacheInfo.ClusterHit)

	return writeArtifacts(result.Artifacts, opts.Formats, input, output)
}
