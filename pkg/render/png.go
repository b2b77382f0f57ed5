package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/treelinehq/treeline/pkg/layout"
)

// RenderPNG renders a diagram as PNG.
//
// The diagram is exported to DOT and rasterized with Graphviz, which
// lays the visible structure out itself. Positions therefore follow
// Graphviz's tree layout rather than the diagram's coordinates; use
// [RenderSVG] when exact positions matter.
func RenderPNG(ctx context.Context, d layout.Diagram, opts DOTOptions) ([]byte, error) {
	return renderGraphviz(ctx, ToDOT(d, opts), graphviz.PNG)
}

// RenderDOTSVG renders a DOT string to SVG using Graphviz. It exists
// for hosts that post-process the DOT export before rasterizing.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	return renderGraphviz(ctx, dot, graphviz.SVG)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
