// Package render produces Graphviz visualizations of clustered networks.
//
// Each community becomes a Graphviz subgraph cluster with its own fill
// color, so the partition is visible at a glance. [ToDOT] emits the DOT
// source and [RenderSVG] rasterizes it with the embedded Graphviz engine.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/voltcluster/voltcluster/pkg/graph"
)

// palette holds the fill colors assigned to clusters in order.
// Communities beyond the palette wrap around.
var palette = []string{
	"#a6cee3", "#b2df8a", "#fb9a99", "#fdbf6f",
	"#cab2d6", "#ffff99", "#1f78b4", "#33a02c",
}

// Options configures DOT rendering.
type Options struct {
	// Labels includes node labels instead of bare IDs.
	Labels bool

	// Weights annotates edges with their weight when it differs from 1.
	Weights bool
}

// ToDOT converts a graph and its community partition to Graphviz DOT.
// Nodes of the i-th cluster share the i-th palette color; nodes outside any
// cluster (which should not happen for a valid partition) render unfilled.
func ToDOT(g graph.Graph, clusters [][]int64, opts Options) string {
	member := make(map[int64]int, len(g.Nodes))
	for i, cl := range clusters {
		for _, id := range cl {
			member[id] = i
		}
	}

	labels := make(map[int64]string, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if opts.Labels {
			labels[n.ID] = n.DisplayLabel()
		} else {
			labels[n.ID] = fmt.Sprintf("%d", n.ID)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph communities {\n")
	buf.WriteString("  layout=fdp;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for i, cl := range clusters {
		color := palette[i%len(palette)]
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=\"community %d\";\n", i)
		buf.WriteString("    style=rounded;\n")
		for _, id := range cl {
			fmt.Fprintf(&buf, "    %q [label=%q, fillcolor=%q];\n",
				fmt.Sprintf("n%d", id), labels[id], color)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		attrs := ""
		if opts.Weights && e.Weight != 0 && e.Weight != 1 {
			attrs = fmt.Sprintf(" [label=%q]", trimFloat(e.Weight))
		}
		fmt.Fprintf(&buf, "  %q -- %q%s;\n",
			fmt.Sprintf("n%d", e.From), fmt.Sprintf("n%d", e.To), attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.3f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
