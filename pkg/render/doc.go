// Package render converts computed diagrams into output artifacts.
//
// # Overview
//
// Rendering is a pure function of a [layout.Diagram]: every sink walks
// the positioned nodes and edges and emits bytes, without touching the
// tree or the layout engine. Supported formats:
//
//   - [RenderSVG]: standalone SVG with rounded node boxes, cubic Bezier
//     edges, and connector knobs
//   - [RenderHTML]: self-contained HTML page embedding the SVG with a
//     pan/zoom script and the diagram JSON for tooling
//   - [ToDOT]: Graphviz DOT export of the visible structure
//   - [RenderPNG]: raster output, produced by laying the DOT export out
//     with Graphviz
//   - [RenderJSON]: the diagram plus render metadata as JSON
//
// # Styling
//
// SVG and HTML output is styled through [Style]. The zero value is not
// useful; start from [DefaultStyle] or [DarkStyle] and override fields:
//
//	style := render.DefaultStyle
//	style.NodeFill = "#eef2ff"
//	svg := render.RenderSVG(d, render.WithStyle(style))
//
// Box text is positioned with the same font and padding the layout pass
// used; pass [WithFont] and [WithBoxPadding] when those were customized,
// or the text will not sit centered in its box.
//
// [layout.Diagram]: github.com/treelinehq/treeline/pkg/layout.Diagram
package render
