package layout

import (
	"math"

	"github.com/treelinehq/treeline/pkg/expand"
	"github.com/treelinehq/treeline/pkg/text"
	"github.com/treelinehq/treeline/pkg/tree"
)

// Build lays out the visible tree and returns the positioned diagram.
//
// The expandable set must describe the canonical tree (see
// tree.ExpandableIDs) so that collapsed nodes keep HasChildren = true.
// Build never fails: a nil visible tree yields an empty diagram and a
// single-node tree yields one node and zero edges.
func Build(visible *tree.Node, expandable expand.Set, opts ...Option) Diagram {
	if visible == nil {
		return Diagram{}
	}
	o := buildOptions(opts)

	root := measure(visible, &o)
	extents(root, &o)
	place(root, 0, 0, &o)

	var d Diagram
	collect(root, &d, &o, expandable)
	d.Viewport = shiftIntoView(&d, &o)
	return d
}

// workNode is the mutable scratch node for one pass.
type workNode struct {
	src      *tree.Node
	lines    []string
	boxW     float64
	boxH     float64
	extent   float64
	depth    int
	y        float64
	children []*workNode
}

// measure sizes every visible node's box from its wrapped label.
func measure(n *tree.Node, o *Options) *workNode {
	w := &workNode{src: n}
	w.lines = text.Wrap(o.Metrics, n.Label, o.MaxTextWidth)
	w.boxW = text.MaxLineWidth(o.Metrics, w.lines) + 2*o.PadX
	w.boxH = float64(len(w.lines))*o.Metrics.Font().LineHeight + 2*o.PadY
	for _, c := range n.Children {
		w.children = append(w.children, measure(c, o))
	}
	return w
}

// extents is the post-order pass: each subtree's required span on the
// order axis is the larger of the node's own box height and the stacked
// extents of its children.
func extents(w *workNode, o *Options) {
	sum := 0.0
	for i, c := range w.children {
		extents(c, o)
		if i > 0 {
			sum += o.SiblingGap
		}
		sum += c.extent
	}
	w.extent = math.Max(w.boxH, sum)
}

// place is the pre-order pass: the subtree occupies the vertical band
// [top, top+extent); child bands stack inside it in input order, and the
// node centers between its first and last child, clamped so its own box
// stays within the band.
func place(w *workNode, depth int, top float64, o *Options) {
	w.depth = depth

	if len(w.children) == 0 {
		w.y = top + w.extent/2
		return
	}

	childSpan := float64(len(w.children)-1) * o.SiblingGap
	for _, c := range w.children {
		childSpan += c.extent
	}

	// Children center within a band taller than their stack (a parent
	// box taller than all its children combined).
	cursor := top + (w.extent-childSpan)/2
	for _, c := range w.children {
		place(c, depth+1, cursor, o)
		cursor += c.extent + o.SiblingGap
	}

	first := w.children[0]
	last := w.children[len(w.children)-1]
	w.y = clamp((first.y+last.y)/2, top+w.boxH/2, top+w.extent-w.boxH/2)
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Min(math.Max(v, lo), hi)
}

// collect flattens the placed tree into diagram nodes and edges, in
// pre-order so output order is deterministic.
func collect(w *workNode, d *Diagram, o *Options, expandable expand.Set) {
	n := Node{
		ID:    w.src.ID,
		Label: w.src.Label,
		Lines: w.lines,
		Depth: w.depth,
		// Canonical expandability, so collapsed nodes keep their
		// expand affordance across collapse/expand cycles.
		HasChildren: expandable.Has(w.src.ID),
		X:           float64(w.depth) * o.LevelGap,
		Y:           w.y,
		BoxW:        w.boxW,
		BoxH:        w.boxH,
	}
	d.Nodes = append(d.Nodes, n)

	for _, c := range w.children {
		d.Edges = append(d.Edges, edgeBetween(n, w, c, o))
		collect(c, d, o, expandable)
	}
}

// edgeBetween connects the parent's trailing edge midpoint to the
// child's leading edge midpoint, each offset outward by the connector
// radius so the curve does not overlap the connector markers.
func edgeBetween(parent Node, pw, cw *workNode, o *Options) Edge {
	src := Point{
		X: parent.X + 2*o.ConnectorRadius + pw.boxW,
		Y: pw.y,
	}
	tgt := Point{
		X: float64(cw.depth) * o.LevelGap,
		Y: cw.y,
	}

	off := math.Min(o.CurveCap, 0.6*math.Abs(tgt.X-src.X))
	return Edge{
		ID:     pw.src.ID + "->" + cw.src.ID,
		Source: src,
		Target: tgt,
		C1:     Point{X: src.X + off, Y: src.Y},
		C2:     Point{X: tgt.X - off, Y: tgt.Y},
	}
}
