package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/treelinehq/treeline/pkg/layout"
)

// DOTOptions configures Graphviz DOT export.
type DOTOptions struct {
	// Detailed includes depth and box size in node labels.
	// When false, only the wrapped label is shown.
	Detailed bool
}

// ToDOT converts a diagram to Graphviz DOT format.
//
// The export carries the visible structure only: Graphviz computes its
// own positions, so collapsed branches simply do not appear. Collapsed
// expandable nodes are rendered with dashed outlines to show that more
// of the tree exists below them.
func ToDOT(d layout.Diagram, opts DOTOptions) string {
	expanded := sourceIDs(d)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=13, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=1.0;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		_, isExpanded := expanded[n.ID]
		label := dotLabel(n, opts.Detailed)
		attrs := dotAttrs(n, label, isExpanded)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		if parent, child, ok := strings.Cut(e.ID, "->"); ok {
			fmt.Fprintf(&buf, "  %q -> %q;\n", parent, child)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(n layout.Node, detailed bool) string {
	label := strings.Join(n.Lines, "\n")
	if label == "" {
		label = n.Label
	}
	if !detailed {
		return label
	}
	return label + fmt.Sprintf("\ndepth: %d\nbox: %.0fx%.0f", n.Depth, n.BoxW, n.BoxH)
}

func dotAttrs(n layout.Node, label string, expanded bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.HasChildren && !expanded {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}
