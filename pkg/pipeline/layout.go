package pipeline

import (
	"context"
	"time"

	"github.com/treelinehq/treeline/pkg/layout"
	"github.com/treelinehq/treeline/pkg/observability"
	"github.com/treelinehq/treeline/pkg/tree"
)

// ComputeDiagram runs the layout stage without caching: it reduces the
// canonical tree to the visible subtree for the options' expanded set
// and positions it.
func ComputeDiagram(ctx context.Context, root *tree.Node, opts Options) (layout.Diagram, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Diagram{}, err
	}

	expanded := opts.expandedSet(root)
	visible := tree.ReduceVisible(root, expanded)

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, visible.Count())

	d := layout.Build(visible, tree.ExpandableIDs(root), opts.layoutOptions()...)

	opts.Logger.Debug("computed layout",
		"visible", len(d.Nodes),
		"edges", len(d.Edges),
		"width", d.Viewport.Width(),
		"height", d.Viewport.Height())
	observability.Pipeline().OnLayoutComplete(ctx, visible.Count(), time.Since(start), nil)
	return d, nil
}
