package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voltcluster/voltcluster/pkg/graph"
	"github.com/voltcluster/voltcluster/pkg/pipeline"
)

// renderCommand creates the render command for visualizing an existing
// cluster assignment without rerunning the algorithm.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		clustersPath string
		formatsStr   string
		output       string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a graph with a precomputed cluster assignment",
		Long: `Render a graph with a precomputed cluster assignment.

The assignment is the JSON output of 'cluster': an array of arrays of node
IDs. Each community is drawn as a colored subgraph.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if len(opts.Formats) == 1 && opts.Formats[0] == pipeline.FormatJSON {
				// JSON in, JSON out would be a no-op.
				opts.Formats = []string{pipeline.FormatSVG}
			}
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], clustersPath, opts, output)
		},
	}

	cmd.Flags().StringVar(&clustersPath, "clusters", "", "path to the cluster assignment JSON (required)")
	_ = cmd.MarkFlagRequired("clusters")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "use node labels in the output")
	cmd.Flags().BoolVar(&opts.Weights, "weights", false, "show edge weights in the output")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, clustersPath string, opts pipeline.Options, output string) error {
	opts.Logger = c.Logger
	ctx = withLogger(ctx, c.Logger)
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	data, err := os.ReadFile(clustersPath)
	if err != nil {
		return fmt.Errorf("load clusters %s: %w", clustersPath, err)
	}
	var clusters [][]int64
	if err := json.Unmarshal(data, &clusters); err != nil {
		return fmt.Errorf("parse clusters %s: %w", clustersPath, err)
	}

	runner, err := c.newRunner(true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	artifacts, err := runner.Render(ctx, g, clusters, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	return writeArtifacts(artifacts, opts.Formats, input, output)
}
